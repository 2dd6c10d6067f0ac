package pagespeed

// Response is the subset of the PageSpeed Insights v5 JSON body the
// collector cares about. Every leaf value is a pointer because the API may
// omit any audit, category or field metric.
type Response struct {
	LoadingExperience *LoadingExperience `json:"loadingExperience,omitempty"`
	LighthouseResult  *LighthouseResult  `json:"lighthouseResult,omitempty"`
}

type LoadingExperience struct {
	Metrics map[string]FieldMetric `json:"metrics"`
}

type FieldMetric struct {
	Percentile *float64 `json:"percentile,omitempty"`
}

type LighthouseResult struct {
	Audits     map[string]Audit    `json:"audits"`
	Categories map[string]Category `json:"categories"`
}

type Audit struct {
	NumericValue *float64 `json:"numericValue,omitempty"`
}

type Category struct {
	Score *float64 `json:"score,omitempty"`
}

// PerformanceScore returns the normalized lighthouse performance score
// scaled to 0-100, or 0 when the response carries no score at all. The zero
// default keeps the score sortable downstream; it does not mean a measured
// zero.
func (r *Response) PerformanceScore() float64 {
	if r.LighthouseResult == nil {
		return 0
	}
	cat, ok := r.LighthouseResult.Categories["performance"]
	if !ok || cat.Score == nil {
		return 0
	}
	return *cat.Score * 100
}

// AuditValue returns the numericValue of a lighthouse audit, or nil when the
// audit or its value is absent.
func (r *Response) AuditValue(name string) *float64 {
	if r.LighthouseResult == nil {
		return nil
	}
	audit, ok := r.LighthouseResult.Audits[name]
	if !ok {
		return nil
	}
	return audit.NumericValue
}

// FieldPercentile returns the percentile of a CrUX field metric, or nil when
// the metric is absent.
func (r *Response) FieldPercentile(name string) *float64 {
	if r.LoadingExperience == nil {
		return nil
	}
	metric, ok := r.LoadingExperience.Metrics[name]
	if !ok {
		return nil
	}
	return metric.Percentile
}
