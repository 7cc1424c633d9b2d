package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRunReportRequest(t *testing.T) {
	request, err := BuildRunReportRequest(ReportArgs{
		Property:   "213025502",
		DateRanges: parseJSONList(t, `[{"start_date": "2025-01-01", "end_date": "2025-01-31"}]`),
		Dimensions: []string{"country", "deviceCategory"},
		Metrics:    []string{"sessions", "activeUsers"},
		DimensionFilter: parseJSON(t, `{
			"filter": {"field_name": "country", "string_filter": {"value": "US"}}
		}`),
		OrderBys:     parseJSONList(t, `[{"desc": true, "metric": {"metric_name": "sessions"}}]`),
		Limit:        50,
		Offset:       100,
		CurrencyCode: "USD",
	})
	require.NoError(t, err)

	assert.Equal(t, "properties/213025502", request.Property)
	require.Len(t, request.Dimensions, 2)
	assert.Equal(t, "country", request.Dimensions[0].Name)
	require.Len(t, request.Metrics, 2)
	assert.Equal(t, "activeUsers", request.Metrics[1].Name)
	require.NotNil(t, request.DimensionFilter)
	assert.Nil(t, request.MetricFilter)
	require.Len(t, request.OrderBys, 1)
	assert.Equal(t, int64(50), request.Limit)
	assert.Equal(t, int64(100), request.Offset)
	assert.Equal(t, "USD", request.CurrencyCode)

	// Quota is always requested from the backend so the monitor can watch
	// usage; output inclusion is gated separately.
	assert.True(t, request.ReturnPropertyQuota)
}

func TestBuildRunReportRequestInvalidArgs(t *testing.T) {
	valid := func() ReportArgs {
		return ReportArgs{
			Property:   "213025502",
			DateRanges: parseJSONList(t, `[{"start_date": "7daysAgo", "end_date": "today"}]`),
			Dimensions: []string{"country"},
			Metrics:    []string{"sessions"},
		}
	}

	t.Run("invalid property", func(t *testing.T) {
		args := valid()
		args.Property = "nope"
		_, err := BuildRunReportRequest(args)
		assert.ErrorIs(t, err, ErrInvalidProperty)
	})

	t.Run("negative limit", func(t *testing.T) {
		args := valid()
		args.Limit = -1
		_, err := BuildRunReportRequest(args)
		assert.ErrorIs(t, err, ErrInvalidFilter)
	})

	t.Run("negative offset", func(t *testing.T) {
		args := valid()
		args.Offset = -1
		_, err := BuildRunReportRequest(args)
		assert.ErrorIs(t, err, ErrInvalidFilter)
	})

	t.Run("malformed dimension filter", func(t *testing.T) {
		args := valid()
		args.DimensionFilter = parseJSON(t, `{"filter": {"string_filter": {}}}`)
		_, err := BuildRunReportRequest(args)
		assert.ErrorIs(t, err, ErrInvalidFilter)
	})

	t.Run("malformed metric filter", func(t *testing.T) {
		args := valid()
		args.MetricFilter = parseJSON(t, `{}`)
		_, err := BuildRunReportRequest(args)
		assert.ErrorIs(t, err, ErrInvalidFilter)
	})
}

func TestBuildRunRealtimeReportRequest(t *testing.T) {
	request, err := BuildRunRealtimeReportRequest(ReportArgs{
		Property:   "properties/213025502",
		Dimensions: []string{"unifiedScreenName"},
		Metrics:    []string{"activeUsers"},
		Limit:      10,
	})
	require.NoError(t, err)

	assert.Equal(t, "properties/213025502", request.Property)
	assert.Equal(t, int64(10), request.Limit)
	assert.True(t, request.ReturnPropertyQuota)
}
