package analytics

import (
	"fmt"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
)

// ReportArgs is the simplified argument shape accepted by the report tools.
// Property accepts a number, a numeric string, or "properties/<id>".
type ReportArgs struct {
	Property        interface{}
	DateRanges      []interface{}
	Dimensions      []string
	Metrics         []string
	DimensionFilter map[string]interface{}
	MetricFilter    map[string]interface{}
	OrderBys        []interface{}
	Limit           int64
	Offset          int64
	CurrencyCode    string
}

// BuildRunReportRequest translates the simplified arguments into a typed Data
// API RunReportRequest. Property quota is always requested from the backend so
// the quota monitor can watch for approaching limits; whether the quota block
// appears in the tool output is decided separately by the normalizer.
func BuildRunReportRequest(args ReportArgs) (*analyticsdata.RunReportRequest, error) {
	property, err := CanonicalizeProperty(args.Property)
	if err != nil {
		return nil, err
	}

	request := &analyticsdata.RunReportRequest{
		Property:            property,
		Dimensions:          dimensionList(args.Dimensions),
		Metrics:             metricList(args.Metrics),
		ReturnPropertyQuota: true,
	}

	request.DateRanges, err = BuildDateRanges(args.DateRanges)
	if err != nil {
		return nil, err
	}

	if args.DimensionFilter != nil {
		request.DimensionFilter, err = BuildFilterExpression(args.DimensionFilter)
		if err != nil {
			return nil, fmt.Errorf("dimension_filter: %w", err)
		}
	}
	if args.MetricFilter != nil {
		request.MetricFilter, err = BuildFilterExpression(args.MetricFilter)
		if err != nil {
			return nil, fmt.Errorf("metric_filter: %w", err)
		}
	}
	if len(args.OrderBys) > 0 {
		request.OrderBys, err = BuildOrderBys(args.OrderBys)
		if err != nil {
			return nil, err
		}
	}

	if args.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidFilter)
	}
	if args.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must be non-negative", ErrInvalidFilter)
	}
	request.Limit = args.Limit
	request.Offset = args.Offset
	request.CurrencyCode = args.CurrencyCode

	return request, nil
}

// BuildRunRealtimeReportRequest translates the simplified arguments into a
// typed RunRealtimeReportRequest. Realtime reports have no date ranges,
// offset, or currency; the window is fixed by the backend.
func BuildRunRealtimeReportRequest(args ReportArgs) (*analyticsdata.RunRealtimeReportRequest, error) {
	property, err := CanonicalizeProperty(args.Property)
	if err != nil {
		return nil, err
	}

	request := &analyticsdata.RunRealtimeReportRequest{
		Property:            property,
		Dimensions:          dimensionList(args.Dimensions),
		Metrics:             metricList(args.Metrics),
		ReturnPropertyQuota: true,
	}

	if args.DimensionFilter != nil {
		request.DimensionFilter, err = BuildFilterExpression(args.DimensionFilter)
		if err != nil {
			return nil, fmt.Errorf("dimension_filter: %w", err)
		}
	}
	if args.MetricFilter != nil {
		request.MetricFilter, err = BuildFilterExpression(args.MetricFilter)
		if err != nil {
			return nil, fmt.Errorf("metric_filter: %w", err)
		}
	}
	if len(args.OrderBys) > 0 {
		request.OrderBys, err = BuildOrderBys(args.OrderBys)
		if err != nil {
			return nil, err
		}
	}

	if args.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidFilter)
	}
	request.Limit = args.Limit

	return request, nil
}

func dimensionList(names []string) []*analyticsdata.Dimension {
	dims := make([]*analyticsdata.Dimension, 0, len(names))
	for _, name := range names {
		dims = append(dims, &analyticsdata.Dimension{Name: name})
	}
	return dims
}

func metricList(names []string) []*analyticsdata.Metric {
	mets := make([]*analyticsdata.Metric, 0, len(names))
	for _, name := range names {
		mets = append(mets, &analyticsdata.Metric{Name: name})
	}
	return mets
}
