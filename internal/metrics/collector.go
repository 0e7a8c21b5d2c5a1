package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission results.
const (
	ResultSuccess          = "success"
	ResultValidationError  = "validation_error"
	ResultPersistenceError = "persistence_error"
)

// Collector holds all metrics for the complaint service.
// A nil *Collector is valid and records nothing.
type Collector struct {
	submissions          *prometheus.CounterVec
	submissionDuration   prometheus.Histogram
	attachmentFallbacks  prometheus.Counter
	classifications      *prometheus.CounterVec
	classificationErrors prometheus.Counter
	notificationErrors   prometheus.Counter
	feedClients          prometheus.Gauge
}

// NewCollector registers the collectors with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wardcomplaints",
			Subsystem: "submission",
			Name:      "requests_total",
			Help:      "Total number of complaint submissions by result",
		}, []string{"result"}),
		submissionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wardcomplaints",
			Subsystem: "submission",
			Name:      "duration_seconds",
			Help:      "Time taken to process a complaint submission",
			Buckets:   prometheus.DefBuckets,
		}),
		attachmentFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wardcomplaints",
			Subsystem: "submission",
			Name:      "attachment_fallbacks_total",
			Help:      "Submissions stored with an inline image because the upload failed",
		}),
		classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wardcomplaints",
			Subsystem: "verification",
			Name:      "outcomes_total",
			Help:      "Verification outcomes by status",
		}, []string{"status"}),
		classificationErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wardcomplaints",
			Subsystem: "verification",
			Name:      "update_errors_total",
			Help:      "Verification results that could not be written back",
		}),
		notificationErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wardcomplaints",
			Subsystem: "notification",
			Name:      "errors_total",
			Help:      "Operator notifications that failed to send",
		}),
		feedClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "wardcomplaints",
			Subsystem: "feed",
			Name:      "clients",
			Help:      "Connected feed clients",
		}),
	}
}

func (c *Collector) RecordSubmission(result string, started time.Time) {
	if c == nil {
		return
	}
	c.submissions.WithLabelValues(result).Inc()
	c.submissionDuration.Observe(time.Since(started).Seconds())
}

func (c *Collector) RecordAttachmentFallback() {
	if c == nil {
		return
	}
	c.attachmentFallbacks.Inc()
}

func (c *Collector) RecordClassification(status string) {
	if c == nil {
		return
	}
	c.classifications.WithLabelValues(status).Inc()
}

func (c *Collector) RecordClassificationError() {
	if c == nil {
		return
	}
	c.classificationErrors.Inc()
}

func (c *Collector) RecordNotificationError() {
	if c == nil {
		return
	}
	c.notificationErrors.Inc()
}

func (c *Collector) SetFeedClients(n int) {
	if c == nil {
		return
	}
	c.feedClients.Set(float64(n))
}
