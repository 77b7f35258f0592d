package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "deepsort",
		Name:      "frames_processed_total",
		Help:      "Total number of frames run through a tracker",
	})

	FrameErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deepsort",
		Name:      "frame_errors_total",
		Help:      "Total number of frames that failed, by reason",
	}, []string{"reason"})

	TracksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "deepsort",
		Name:      "tracks_created_total",
		Help:      "Total number of new tracks started",
	})

	ActiveTracks = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "deepsort",
		Name:      "active_tracks",
		Help:      "Number of live tracks reported by the last frame of each session, summed",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "deepsort",
		Name:      "active_sessions",
		Help:      "Number of tracking sessions held in the store",
	})

	SessionsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "deepsort",
		Name:      "sessions_evicted_total",
		Help:      "Total number of sessions removed for being idle",
	})

	FrameDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "deepsort",
		Name:      "frame_duration_seconds",
		Help:      "Duration of frame processing stages",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"stage"})
)

// Frame error reasons
const (
	ReasonTimeout   = "timeout"
	ReasonCanceled  = "canceled"
	ReasonInvalid   = "invalid"
	ReasonDetection = "detection"
)
