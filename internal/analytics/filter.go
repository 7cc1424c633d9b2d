package analytics

import (
	"fmt"
	"math"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
)

// Keys recognized at each level of the simplified filter shape. The shape
// mirrors the Data API FilterExpression message with snake_case keys, which is
// what callers paste from the protobuf reference docs.
const (
	keyAndGroup      = "and_group"
	keyOrGroup       = "or_group"
	keyNotExpression = "not_expression"
	keyFilter        = "filter"
	keyExpressions   = "expressions"
	keyFieldName     = "field_name"
)

var leafFilterKinds = []string{
	"string_filter",
	"numeric_filter",
	"in_list_filter",
	"between_filter",
	"empty_filter",
}

// BuildFilterExpression recursively materializes a simplified dictionary
// filter into a typed Data API FilterExpression. Exactly one of and_group,
// or_group, not_expression, or filter must be present at each node; groups
// must contain at least one expression; a leaf must name a field and exactly
// one filter kind. Any other shape fails with ErrInvalidFilter.
func BuildFilterExpression(raw map[string]interface{}) (*analyticsdata.FilterExpression, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: expression must not be empty", ErrInvalidFilter)
	}

	var variants []string
	for _, key := range []string{keyAndGroup, keyOrGroup, keyNotExpression, keyFilter} {
		if _, ok := raw[key]; ok {
			variants = append(variants, key)
		}
	}
	if len(variants) != 1 {
		return nil, fmt.Errorf("%w: expression must contain exactly one of %q, %q, %q, or %q",
			ErrInvalidFilter, keyAndGroup, keyOrGroup, keyNotExpression, keyFilter)
	}

	switch variants[0] {
	case keyAndGroup:
		list, err := buildExpressionList(raw[keyAndGroup], keyAndGroup)
		if err != nil {
			return nil, err
		}
		return &analyticsdata.FilterExpression{AndGroup: list}, nil
	case keyOrGroup:
		list, err := buildExpressionList(raw[keyOrGroup], keyOrGroup)
		if err != nil {
			return nil, err
		}
		return &analyticsdata.FilterExpression{OrGroup: list}, nil
	case keyNotExpression:
		inner, ok := raw[keyNotExpression].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s must be an expression object", ErrInvalidFilter, keyNotExpression)
		}
		expr, err := BuildFilterExpression(inner)
		if err != nil {
			return nil, err
		}
		return &analyticsdata.FilterExpression{NotExpression: expr}, nil
	default:
		leaf, ok := raw[keyFilter].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s must be an object", ErrInvalidFilter, keyFilter)
		}
		filter, err := buildLeafFilter(leaf)
		if err != nil {
			return nil, err
		}
		return &analyticsdata.FilterExpression{Filter: filter}, nil
	}
}

func buildExpressionList(raw interface{}, group string) (*analyticsdata.FilterExpressionList, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s must be an object with an %q list", ErrInvalidFilter, group, keyExpressions)
	}
	items, ok := obj[keyExpressions].([]interface{})
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%w: %s must contain at least one expression", ErrInvalidFilter, group)
	}

	list := &analyticsdata.FilterExpressionList{}
	for i, item := range items {
		child, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s expression %d must be an object", ErrInvalidFilter, group, i)
		}
		expr, err := BuildFilterExpression(child)
		if err != nil {
			return nil, err
		}
		list.Expressions = append(list.Expressions, expr)
	}
	return list, nil
}

func buildLeafFilter(leaf map[string]interface{}) (*analyticsdata.Filter, error) {
	fieldName, _ := leaf[keyFieldName].(string)
	if fieldName == "" {
		return nil, fmt.Errorf("%w: filter is missing %q", ErrInvalidFilter, keyFieldName)
	}

	var kinds []string
	for _, kind := range leafFilterKinds {
		if _, ok := leaf[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	if len(kinds) != 1 {
		return nil, fmt.Errorf("%w: filter on %q must specify exactly one of %v, got %d",
			ErrInvalidFilter, fieldName, leafFilterKinds, len(kinds))
	}

	filter := &analyticsdata.Filter{FieldName: fieldName}
	spec, isMap := leaf[kinds[0]].(map[string]interface{})
	if !isMap {
		return nil, fmt.Errorf("%w: %s on %q must be an object", ErrInvalidFilter, kinds[0], fieldName)
	}

	switch kinds[0] {
	case "string_filter":
		filter.StringFilter = &analyticsdata.StringFilter{
			MatchType:     stringValue(spec, "match_type"),
			Value:         stringValue(spec, "value"),
			CaseSensitive: boolValue(spec, "case_sensitive"),
		}
	case "in_list_filter":
		values, err := stringList(spec, "values")
		if err != nil {
			return nil, fmt.Errorf("%w: in_list_filter on %q: %v", ErrInvalidFilter, fieldName, err)
		}
		filter.InListFilter = &analyticsdata.InListFilter{
			Values:        values,
			CaseSensitive: boolValue(spec, "case_sensitive"),
		}
	case "numeric_filter":
		value, err := numericValue(spec["value"])
		if err != nil {
			return nil, fmt.Errorf("%w: numeric_filter on %q: %v", ErrInvalidFilter, fieldName, err)
		}
		filter.NumericFilter = &analyticsdata.NumericFilter{
			Operation: stringValue(spec, "operation"),
			Value:     value,
		}
	case "between_filter":
		from, err := numericValue(spec["from_value"])
		if err != nil {
			return nil, fmt.Errorf("%w: between_filter on %q: %v", ErrInvalidFilter, fieldName, err)
		}
		to, err := numericValue(spec["to_value"])
		if err != nil {
			return nil, fmt.Errorf("%w: between_filter on %q: %v", ErrInvalidFilter, fieldName, err)
		}
		filter.BetweenFilter = &analyticsdata.BetweenFilter{FromValue: from, ToValue: to}
	case "empty_filter":
		filter.EmptyFilter = &analyticsdata.EmptyFilter{}
	}
	return filter, nil
}

// numericValue converts a {int64_value | double_value} object into a typed
// NumericValue.
func numericValue(raw interface{}) (*analyticsdata.NumericValue, error) {
	spec, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("value must be an object with int64_value or double_value")
	}
	if v, ok := spec["int64_value"]; ok {
		n, ok := asInt64(v)
		if !ok {
			return nil, fmt.Errorf("int64_value must be an integer")
		}
		return &analyticsdata.NumericValue{Int64Value: n}, nil
	}
	if v, ok := spec["double_value"]; ok {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("double_value must be a number")
		}
		return &analyticsdata.NumericValue{DoubleValue: f}, nil
	}
	return nil, fmt.Errorf("value must contain int64_value or double_value")
}

// BuildOrderBys converts a list of simplified order_by objects, preserving
// caller order. Each entry must specify exactly one of dimension or metric.
func BuildOrderBys(raw []interface{}) ([]*analyticsdata.OrderBy, error) {
	orderBys := make([]*analyticsdata.OrderBy, 0, len(raw))
	for i, item := range raw {
		spec, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: order_by %d must be an object", ErrInvalidFilter, i)
		}

		orderBy := &analyticsdata.OrderBy{Desc: boolValue(spec, "desc")}
		dim, hasDim := spec["dimension"].(map[string]interface{})
		met, hasMet := spec["metric"].(map[string]interface{})
		switch {
		case hasDim && !hasMet:
			orderBy.Dimension = &analyticsdata.DimensionOrderBy{
				DimensionName: stringValue(dim, "dimension_name"),
				OrderType:     stringValue(dim, "order_type"),
			}
		case hasMet && !hasDim:
			orderBy.Metric = &analyticsdata.MetricOrderBy{
				MetricName: stringValue(met, "metric_name"),
			}
		default:
			return nil, fmt.Errorf("%w: order_by %d must specify exactly one of dimension or metric", ErrInvalidFilter, i)
		}
		orderBys = append(orderBys, orderBy)
	}
	return orderBys, nil
}

// BuildDateRanges converts a list of {start_date, end_date, name?} objects.
func BuildDateRanges(raw []interface{}) ([]*analyticsdata.DateRange, error) {
	ranges := make([]*analyticsdata.DateRange, 0, len(raw))
	for i, item := range raw {
		spec, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: date_range %d must be an object", ErrInvalidFilter, i)
		}
		dr := &analyticsdata.DateRange{
			StartDate: stringValue(spec, "start_date"),
			EndDate:   stringValue(spec, "end_date"),
			Name:      stringValue(spec, "name"),
		}
		if dr.StartDate == "" || dr.EndDate == "" {
			return nil, fmt.Errorf("%w: date_range %d must have start_date and end_date", ErrInvalidFilter, i)
		}
		ranges = append(ranges, dr)
	}
	return ranges, nil
}

func stringValue(spec map[string]interface{}, key string) string {
	v, _ := spec[key].(string)
	return v
}

func boolValue(spec map[string]interface{}, key string) bool {
	v, _ := spec[key].(bool)
	return v
}

func stringList(spec map[string]interface{}, key string) ([]string, error) {
	raw, ok := spec[key].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("%s must be a non-empty list of strings", key)
	}
	values := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s must contain only strings", key)
		}
		values = append(values, s)
	}
	return values, nil
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}
