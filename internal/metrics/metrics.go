package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "group_scheduler"

var (
	Submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Availability submissions by outcome.",
	}, []string{"outcome"})

	CandidateSlotQueries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "candidate_slot_queries_total",
		Help:      "Candidate slot queries served.",
	})

	CandidateSlotCompute = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "candidate_slot_compute_seconds",
		Help:      "Time spent computing candidate slots, including cache lookups.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	ExpiredEventsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "expired_events_deleted_total",
		Help:      "Events removed by the expiry sweeper.",
	})
)

func Register(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		Submissions,
		CandidateSlotQueries,
		CandidateSlotCompute,
		HTTPRequestDuration,
		ExpiredEventsDeleted,
	}
	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}
	return nil
}
