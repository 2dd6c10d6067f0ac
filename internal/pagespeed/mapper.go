package pagespeed

import (
	"time"

	"github.com/jose-deblas/dashboardcwv/internal/vitals"
)

// Lighthouse audit and CrUX field metric names used by the mapper.
const (
	auditFCP        = "first-contentful-paint"
	auditLCP        = "largest-contentful-paint"
	auditTBT        = "total-blocking-time"
	auditCLS        = "cumulative-layout-shift"
	auditSpeedIndex = "speed-index"
	auditTTFB       = "server-response-time"
	auditTTI        = "interactive"

	fieldLCP  = "LARGEST_CONTENTFUL_PAINT_MS"
	fieldINP  = "INTERACTION_TO_NEXT_PAINT"
	fieldCLS  = "CUMULATIVE_LAYOUT_SHIFT_SCORE"
	fieldFCP  = "FIRST_CONTENTFUL_PAINT_MS"
	fieldTTFB = "EXPERIMENTAL_TIME_TO_FIRST_BYTE"
)

// MapRecord converts a raw API response into a vitals record. It never
// fails: absent metrics stay nil and only the performance score falls back
// to 0.
func MapRecord(urlID int64, executionDate time.Time, resp *Response) vitals.Record {
	return vitals.Record{
		URLID:            urlID,
		ExecutionDate:    executionDate,
		PerformanceScore: resp.PerformanceScore(),

		FirstContentfulPaint:   resp.AuditValue(auditFCP),
		LargestContentfulPaint: resp.AuditValue(auditLCP),
		TotalBlockingTime:      resp.AuditValue(auditTBT),
		CumulativeLayoutShift:  resp.AuditValue(auditCLS),
		SpeedIndex:             resp.AuditValue(auditSpeedIndex),
		TimeToFirstByte:        resp.AuditValue(auditTTFB),
		TimeToInteractive:      resp.AuditValue(auditTTI),

		CruxLargestContentfulPaint: resp.FieldPercentile(fieldLCP),
		CruxInteractionToNextPaint: resp.FieldPercentile(fieldINP),
		CruxCumulativeLayoutShift:  resp.FieldPercentile(fieldCLS),
		CruxFirstContentfulPaint:   resp.FieldPercentile(fieldFCP),
		CruxTimeToFirstByte:        resp.FieldPercentile(fieldTTFB),
	}
}
