package analytics

import (
	"encoding/json"
	"fmt"

	analyticsalpha "google.golang.org/api/analyticsdata/v1alpha"
)

// FunnelArgs is the simplified argument shape accepted by the funnel report
// tool. Steps is a list of step objects, each either {name, filter_expression}
// with a full funnel filter tree or {name, event} as sugar for a single
// event-name filter.
type FunnelArgs struct {
	Property            interface{}
	Steps               []interface{}
	DateRanges          []interface{}
	Breakdown           map[string]interface{}
	NextAction          map[string]interface{}
	Segments            []interface{}
	ReturnPropertyQuota bool
}

// BuildRunFunnelReportRequest translates the simplified arguments into a
// typed v1alpha RunFunnelReportRequest. A funnel needs at least two steps.
// Breakdown and next-action settings attach to the request, not to the funnel
// definition; the backend schema rejects them inside the funnel object.
func BuildRunFunnelReportRequest(args FunnelArgs) (string, *analyticsalpha.GoogleAnalyticsDataV1alphaRunFunnelReportRequest, error) {
	property, err := CanonicalizeProperty(args.Property)
	if err != nil {
		return "", nil, err
	}

	if len(args.Steps) < 2 {
		return "", nil, fmt.Errorf("%w: a funnel requires at least 2 steps, got %d", ErrInvalidFunnel, len(args.Steps))
	}

	steps := make([]*analyticsalpha.GoogleAnalyticsDataV1alphaFunnelStep, 0, len(args.Steps))
	for i, item := range args.Steps {
		step, err := buildFunnelStep(i, item)
		if err != nil {
			return "", nil, err
		}
		steps = append(steps, step)
	}

	request := &analyticsalpha.GoogleAnalyticsDataV1alphaRunFunnelReportRequest{
		Funnel:              &analyticsalpha.GoogleAnalyticsDataV1alphaFunnel{Steps: steps},
		ReturnPropertyQuota: args.ReturnPropertyQuota,
	}

	for i, item := range args.DateRanges {
		spec, ok := item.(map[string]interface{})
		if !ok {
			return "", nil, fmt.Errorf("%w: date_range %d must be an object", ErrInvalidFunnel, i)
		}
		request.DateRanges = append(request.DateRanges, &analyticsalpha.GoogleAnalyticsDataV1alphaDateRange{
			StartDate: stringValue(spec, "start_date"),
			EndDate:   stringValue(spec, "end_date"),
			Name:      stringValue(spec, "name"),
		})
	}

	if dim := stringValue(args.Breakdown, "breakdown_dimension"); dim != "" {
		request.FunnelBreakdown = &analyticsalpha.GoogleAnalyticsDataV1alphaFunnelBreakdown{
			BreakdownDimension: &analyticsalpha.GoogleAnalyticsDataV1alphaDimension{Name: dim},
		}
	}

	if dim := stringValue(args.NextAction, "next_action_dimension"); dim != "" {
		nextAction := &analyticsalpha.GoogleAnalyticsDataV1alphaFunnelNextAction{
			NextActionDimension: &analyticsalpha.GoogleAnalyticsDataV1alphaDimension{Name: dim},
		}
		if limit, ok := asInt64(args.NextAction["limit"]); ok {
			nextAction.Limit = limit
		}
		request.FunnelNextAction = nextAction
	}

	for i, item := range args.Segments {
		segment, err := buildSegment(i, item)
		if err != nil {
			return "", nil, err
		}
		request.Segments = append(request.Segments, segment)
	}

	return property, request, nil
}

func buildFunnelStep(index int, item interface{}) (*analyticsalpha.GoogleAnalyticsDataV1alphaFunnelStep, error) {
	spec, ok := item.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: step %d must be an object", ErrInvalidFunnel, index+1)
	}

	name := stringValue(spec, "name")
	if name == "" {
		name = fmt.Sprintf("Step %d", index+1)
	}

	var expr *analyticsalpha.GoogleAnalyticsDataV1alphaFunnelFilterExpression
	filterRaw, hasFilter := spec["filter_expression"]
	event := stringValue(spec, "event")
	switch {
	case hasFilter:
		filterSpec, ok := filterRaw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: step %d filter_expression must be an object", ErrInvalidFunnel, index+1)
		}
		var err error
		expr, err = buildFunnelFilterExpression(filterSpec)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %v", ErrInvalidFunnel, index+1, err)
		}
	case event != "":
		expr = &analyticsalpha.GoogleAnalyticsDataV1alphaFunnelFilterExpression{
			FunnelEventFilter: &analyticsalpha.GoogleAnalyticsDataV1alphaFunnelEventFilter{
				EventName: event,
			},
		}
	default:
		return nil, fmt.Errorf("%w: step %d must contain either a filter_expression or an event",
			ErrInvalidFunnel, index+1)
	}

	return &analyticsalpha.GoogleAnalyticsDataV1alphaFunnelStep{
		Name:             name,
		FilterExpression: expr,
	}, nil
}

// buildFunnelFilterExpression mirrors BuildFilterExpression for the v1alpha
// funnel filter schema, which replaces the generic leaf with event and field
// filter variants.
func buildFunnelFilterExpression(raw map[string]interface{}) (*analyticsalpha.GoogleAnalyticsDataV1alphaFunnelFilterExpression, error) {
	var variants []string
	for _, key := range []string{keyAndGroup, keyOrGroup, keyNotExpression, "funnel_event_filter", "funnel_field_filter"} {
		if _, ok := raw[key]; ok {
			variants = append(variants, key)
		}
	}
	if len(variants) != 1 {
		return nil, fmt.Errorf("funnel filter expression must contain exactly one of and_group, or_group, not_expression, funnel_event_filter, or funnel_field_filter")
	}

	switch variants[0] {
	case keyAndGroup, keyOrGroup:
		obj, ok := raw[variants[0]].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s must be an object with an expressions list", variants[0])
		}
		items, ok := obj[keyExpressions].([]interface{})
		if !ok || len(items) == 0 {
			return nil, fmt.Errorf("%s must contain at least one expression", variants[0])
		}
		list := &analyticsalpha.GoogleAnalyticsDataV1alphaFunnelFilterExpressionList{}
		for _, item := range items {
			child, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s expressions must be objects", variants[0])
			}
			expr, err := buildFunnelFilterExpression(child)
			if err != nil {
				return nil, err
			}
			list.Expressions = append(list.Expressions, expr)
		}
		if variants[0] == keyAndGroup {
			return &analyticsalpha.GoogleAnalyticsDataV1alphaFunnelFilterExpression{AndGroup: list}, nil
		}
		return &analyticsalpha.GoogleAnalyticsDataV1alphaFunnelFilterExpression{OrGroup: list}, nil

	case keyNotExpression:
		inner, ok := raw[keyNotExpression].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("not_expression must be an expression object")
		}
		expr, err := buildFunnelFilterExpression(inner)
		if err != nil {
			return nil, err
		}
		return &analyticsalpha.GoogleAnalyticsDataV1alphaFunnelFilterExpression{NotExpression: expr}, nil

	case "funnel_event_filter":
		spec, ok := raw["funnel_event_filter"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("funnel_event_filter must be an object")
		}
		eventName := stringValue(spec, "event_name")
		if eventName == "" {
			return nil, fmt.Errorf("funnel_event_filter requires event_name")
		}
		return &analyticsalpha.GoogleAnalyticsDataV1alphaFunnelFilterExpression{
			FunnelEventFilter: &analyticsalpha.GoogleAnalyticsDataV1alphaFunnelEventFilter{
				EventName: eventName,
			},
		}, nil

	default:
		spec, ok := raw["funnel_field_filter"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("funnel_field_filter must be an object")
		}
		return buildFunnelFieldFilter(spec)
	}
}

func buildFunnelFieldFilter(spec map[string]interface{}) (*analyticsalpha.GoogleAnalyticsDataV1alphaFunnelFilterExpression, error) {
	fieldName := stringValue(spec, keyFieldName)
	if fieldName == "" {
		return nil, fmt.Errorf("funnel_field_filter is missing field_name")
	}

	field := &analyticsalpha.GoogleAnalyticsDataV1alphaFunnelFieldFilter{FieldName: fieldName}

	var kinds []string
	for _, kind := range []string{"string_filter", "numeric_filter", "in_list_filter", "between_filter"} {
		if _, ok := spec[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	if len(kinds) != 1 {
		return nil, fmt.Errorf("funnel_field_filter on %q must specify exactly one filter kind", fieldName)
	}

	kindSpec, ok := spec[kinds[0]].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s on %q must be an object", kinds[0], fieldName)
	}

	switch kinds[0] {
	case "string_filter":
		field.StringFilter = &analyticsalpha.GoogleAnalyticsDataV1alphaStringFilter{
			MatchType:     stringValue(kindSpec, "match_type"),
			Value:         stringValue(kindSpec, "value"),
			CaseSensitive: boolValue(kindSpec, "case_sensitive"),
		}
	case "in_list_filter":
		values, err := stringList(kindSpec, "values")
		if err != nil {
			return nil, fmt.Errorf("in_list_filter on %q: %v", fieldName, err)
		}
		field.InListFilter = &analyticsalpha.GoogleAnalyticsDataV1alphaInListFilter{
			Values:        values,
			CaseSensitive: boolValue(kindSpec, "case_sensitive"),
		}
	case "numeric_filter":
		value, err := alphaNumericValue(kindSpec["value"])
		if err != nil {
			return nil, fmt.Errorf("numeric_filter on %q: %v", fieldName, err)
		}
		field.NumericFilter = &analyticsalpha.GoogleAnalyticsDataV1alphaNumericFilter{
			Operation: stringValue(kindSpec, "operation"),
			Value:     value,
		}
	case "between_filter":
		from, err := alphaNumericValue(kindSpec["from_value"])
		if err != nil {
			return nil, fmt.Errorf("between_filter on %q: %v", fieldName, err)
		}
		to, err := alphaNumericValue(kindSpec["to_value"])
		if err != nil {
			return nil, fmt.Errorf("between_filter on %q: %v", fieldName, err)
		}
		field.BetweenFilter = &analyticsalpha.GoogleAnalyticsDataV1alphaBetweenFilter{
			FromValue: from,
			ToValue:   to,
		}
	}

	return &analyticsalpha.GoogleAnalyticsDataV1alphaFunnelFilterExpression{
		FunnelFieldFilter: field,
	}, nil
}

func alphaNumericValue(raw interface{}) (*analyticsalpha.GoogleAnalyticsDataV1alphaNumericValue, error) {
	spec, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("value must be an object with int64_value or double_value")
	}
	if v, ok := spec["int64_value"]; ok {
		n, ok := asInt64(v)
		if !ok {
			return nil, fmt.Errorf("int64_value must be an integer")
		}
		return &analyticsalpha.GoogleAnalyticsDataV1alphaNumericValue{Int64Value: n}, nil
	}
	if v, ok := spec["double_value"]; ok {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("double_value must be a number")
		}
		return &analyticsalpha.GoogleAnalyticsDataV1alphaNumericValue{DoubleValue: f}, nil
	}
	return nil, fmt.Errorf("value must contain int64_value or double_value")
}

// buildSegment passes a segment definition through to the typed schema. The
// segment schema is large and rarely used, so it is converted generically
// rather than field by field: snake_case keys are rewritten to the camelCase
// JSON names of the API and decoded into the typed struct.
func buildSegment(index int, item interface{}) (*analyticsalpha.GoogleAnalyticsDataV1alphaSegment, error) {
	spec, ok := item.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: segment %d must be an object", ErrInvalidFunnel, index)
	}

	data, err := json.Marshal(snakeToCamelKeys(spec))
	if err != nil {
		return nil, fmt.Errorf("%w: segment %d: %v", ErrInvalidFunnel, index, err)
	}
	segment := &analyticsalpha.GoogleAnalyticsDataV1alphaSegment{}
	if err := json.Unmarshal(data, segment); err != nil {
		return nil, fmt.Errorf("%w: segment %d: %v", ErrInvalidFunnel, index, err)
	}
	return segment, nil
}
