package analytics

import (
	"encoding/json"
	"fmt"

	analyticsalpha "google.golang.org/api/analyticsdata/v1alpha"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
)

// quotaBuckets fixes the scan order for quota warnings. It follows the field
// order of the PropertyQuota message, which is the order the buckets appear in
// on the wire.
var quotaBucketNames = []string{
	"tokens_per_day",
	"tokens_per_hour",
	"concurrent_requests",
	"server_errors_per_project_per_hour",
	"potentially_thresholded_requests_per_hour",
	"tokens_per_project_per_hour",
}

// quotaWarningThreshold is the usage fraction above which a warning is
// emitted. Strictly above: exactly 90% does not warn.
const quotaWarningThreshold = 0.9

// NormalizeReport flattens a RunReportResponse into the compact shape
// returned to tool callers. Optional sections (metadata, totals, maximums,
// minimums, quota) are present only when populated; the quota block appears
// when the caller asked for it or when a bucket is close to exhaustion.
func NormalizeReport(response *analyticsdata.RunReportResponse, quotaRequested bool) map[string]interface{} {
	result := compactRows(response.RowCount, response.DimensionHeaders, response.MetricHeaders, response.Rows)

	if response.Metadata != nil {
		metadata := map[string]interface{}{}
		if response.Metadata.CurrencyCode != "" {
			metadata["currency_code"] = response.Metadata.CurrencyCode
		}
		if response.Metadata.TimeZone != "" {
			metadata["time_zone"] = response.Metadata.TimeZone
		}
		if response.Metadata.DataLossFromOtherRow {
			metadata["data_loss_from_other_row"] = true
		}
		if len(response.Metadata.SamplingMetadatas) > 0 {
			sampling := make([]interface{}, 0, len(response.Metadata.SamplingMetadatas))
			for _, sm := range response.Metadata.SamplingMetadatas {
				sampling = append(sampling, map[string]interface{}{
					"samples_read_count":  sm.SamplesReadCount,
					"sampling_space_size": sm.SamplingSpaceSize,
				})
			}
			metadata["sampling_metadatas"] = sampling
		}
		if len(metadata) > 0 {
			result["metadata"] = metadata
		}
	}

	addAggregateRows(result, "totals", response.Totals)
	addAggregateRows(result, "maximums", response.Maximums)
	addAggregateRows(result, "minimums", response.Minimums)
	addQuota(result, response.PropertyQuota, quotaRequested)

	return result
}

// NormalizeRealtimeReport flattens a RunRealtimeReportResponse. Realtime
// responses carry no metadata section.
func NormalizeRealtimeReport(response *analyticsdata.RunRealtimeReportResponse, quotaRequested bool) map[string]interface{} {
	result := compactRows(response.RowCount, response.DimensionHeaders, response.MetricHeaders, response.Rows)

	addAggregateRows(result, "totals", response.Totals)
	addAggregateRows(result, "maximums", response.Maximums)
	addAggregateRows(result, "minimums", response.Minimums)
	addQuota(result, response.PropertyQuota, quotaRequested)

	return result
}

// NormalizeFunnelReport renders a funnel response in the snake_case shape of
// the protobuf reference docs. The funnel schema is deep and the caller needs
// all of it, so the typed response is converted generically instead of being
// flattened.
func NormalizeFunnelReport(response *analyticsalpha.GoogleAnalyticsDataV1alphaRunFunnelReportResponse) (map[string]interface{}, error) {
	data, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to encode funnel response: %w", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode funnel response: %w", err)
	}
	converted, _ := camelToSnakeKeys(raw).(map[string]interface{})
	return converted, nil
}

// NormalizeResource renders any typed API resource in the snake_case shape of
// the protobuf reference docs. Used for Admin API resources and metadata,
// whose schemas are passed through rather than flattened.
func NormalizeResource(resource interface{}) (interface{}, error) {
	data, err := json.Marshal(resource)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resource: %w", err)
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode resource: %w", err)
	}
	return camelToSnakeKeys(raw), nil
}

func compactRows(rowCount int64, dimensionHeaders []*analyticsdata.DimensionHeader, metricHeaders []*analyticsdata.MetricHeader, rows []*analyticsdata.Row) map[string]interface{} {
	dimNames := make([]string, 0, len(dimensionHeaders))
	for _, h := range dimensionHeaders {
		dimNames = append(dimNames, h.Name)
	}
	metNames := make([]string, 0, len(metricHeaders))
	for _, h := range metricHeaders {
		metNames = append(metNames, h.Name)
	}

	compact := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		dims := make([]string, 0, len(row.DimensionValues))
		for _, dv := range row.DimensionValues {
			dims = append(dims, dv.Value)
		}
		mets := make([]string, 0, len(row.MetricValues))
		for _, mv := range row.MetricValues {
			mets = append(mets, mv.Value)
		}
		compact = append(compact, map[string]interface{}{
			"dimensions": dims,
			"metrics":    mets,
		})
	}

	return map[string]interface{}{
		"row_count":         rowCount,
		"dimension_headers": dimNames,
		"metric_headers":    metNames,
		"rows":              compact,
	}
}

func addAggregateRows(result map[string]interface{}, key string, rows []*analyticsdata.Row) {
	if len(rows) == 0 {
		return
	}
	converted := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		dims := make([]interface{}, 0, len(row.DimensionValues))
		for _, dv := range row.DimensionValues {
			dims = append(dims, map[string]interface{}{"value": dv.Value})
		}
		mets := make([]interface{}, 0, len(row.MetricValues))
		for _, mv := range row.MetricValues {
			mets = append(mets, map[string]interface{}{"value": mv.Value})
		}
		converted = append(converted, map[string]interface{}{
			"dimension_values": dims,
			"metric_values":    mets,
		})
	}
	result[key] = converted
}

// addQuota computes the quota block and warning from the response's property
// quota. The block is included iff the caller requested it or a bucket's
// usage strictly exceeds the warning threshold; the scan stops at the first
// bucket over the threshold.
func addQuota(result map[string]interface{}, quota *analyticsdata.PropertyQuota, quotaRequested bool) {
	if quota == nil {
		return
	}

	buckets := map[string]*analyticsdata.QuotaStatus{
		"tokens_per_day":                     quota.TokensPerDay,
		"tokens_per_hour":                    quota.TokensPerHour,
		"concurrent_requests":                quota.ConcurrentRequests,
		"server_errors_per_project_per_hour": quota.ServerErrorsPerProjectPerHour,
		"potentially_thresholded_requests_per_hour": quota.PotentiallyThresholdedRequestsPerHour,
		"tokens_per_project_per_hour":               quota.TokensPerProjectPerHour,
	}

	block := map[string]interface{}{}
	var warning string
	for _, name := range quotaBucketNames {
		status := buckets[name]
		if status == nil {
			continue
		}
		block[name] = map[string]interface{}{
			"consumed":  status.Consumed,
			"remaining": status.Remaining,
		}
		if warning != "" {
			continue
		}
		total := status.Consumed + status.Remaining
		if total > 0 {
			usage := float64(status.Consumed) / float64(total)
			if usage > quotaWarningThreshold {
				warning = fmt.Sprintf("WARNING: %s is at %.1f%% (%d/%d). Approaching quota limit.",
					name, usage*100, status.Consumed, total)
			}
		}
	}

	if quotaRequested || warning != "" {
		result["quota"] = block
		if warning != "" {
			result["quota_warning"] = warning
		}
	}
}
