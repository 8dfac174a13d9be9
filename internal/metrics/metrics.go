package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bpmn_interview"

// Recorder holds the interview collectors. A nil Recorder records nothing.
type Recorder struct {
	turns              *prometheus.CounterVec
	generations        *prometheus.CounterVec
	generationDuration prometheus.Histogram
	repairAttempts     prometheus.Histogram
	transcriptions     *prometheus.CounterVec
	activeStreams      prometheus.Gauge
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Submitted answers by turn outcome.",
		}, []string{"outcome"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "BPMN synthesis runs by status.",
		}, []string{"status"}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Wall time of successful BPMN synthesis runs.",
			Buckets:   []float64{5, 15, 30, 60, 120, 240, 480},
		}),
		repairAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "repair_attempts",
			Help:      "Improvement passes spent in the repair loop per run.",
			Buckets:   []float64{0, 1, 2, 3, 5},
		}),
		transcriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Audio answers by transcription status.",
		}, []string{"status"}),
		activeStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "progress_streams",
			Help:      "Open websocket progress streams on this instance.",
		}),
	}
	reg.MustRegister(r.turns, r.generations, r.generationDuration, r.repairAttempts, r.transcriptions, r.activeStreams)
	return r
}

func (r *Recorder) Turn(outcome string) {
	if r == nil {
		return
	}
	r.turns.WithLabelValues(outcome).Inc()
}

// Generation records a finished run. Only successful runs feed the
// duration and attempt histograms.
func (r *Recorder) Generation(err error, duration time.Duration, attempts int) {
	if r == nil {
		return
	}
	if err != nil {
		r.generations.WithLabelValues("failed").Inc()
		return
	}
	r.generations.WithLabelValues("ok").Inc()
	r.generationDuration.Observe(duration.Seconds())
	r.repairAttempts.Observe(float64(attempts))
}

func (r *Recorder) Transcription(status string) {
	if r == nil {
		return
	}
	r.transcriptions.WithLabelValues(status).Inc()
}

func (r *Recorder) StreamOpened() {
	if r == nil {
		return
	}
	r.activeStreams.Inc()
}

func (r *Recorder) StreamClosed() {
	if r == nil {
		return
	}
	r.activeStreams.Dec()
}
