package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.Turn("advanced")
	r.Turn("advanced")
	r.Turn("flagged")
	assert.Equal(t, 2.0, testutil.ToFloat64(r.turns.WithLabelValues("advanced")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.turns.WithLabelValues("flagged")))

	r.Generation(nil, 42*time.Second, 2)
	r.Generation(errors.New("boom"), 0, 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.generations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.generations.WithLabelValues("failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.generationDuration))

	r.Transcription("timeout")
	assert.Equal(t, 1.0, testutil.ToFloat64(r.transcriptions.WithLabelValues("timeout")))

	r.StreamOpened()
	r.StreamOpened()
	r.StreamClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(r.activeStreams))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Turn("stayed")
		r.Generation(nil, time.Second, 1)
		r.Transcription("ok")
		r.StreamOpened()
		r.StreamClosed()
	})
}
