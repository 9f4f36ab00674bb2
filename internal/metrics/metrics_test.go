package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordRow(DirectionOut, "triple")
	m.RecordRow(DirectionOut, "triple")
	m.RecordRow(DirectionIn, "name")
	m.RecordFrame(OpAppend, 300)
	m.RecordFrame(OpRead, 0)
	m.RecordStream()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.rowsTotal.WithLabelValues(DirectionOut, "triple")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rowsTotal.WithLabelValues(DirectionIn, "name")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.framesTotal.WithLabelValues(OpAppend)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.streamsTotal))

	n, err := testutil.GatherAndCount(reg, "jelly_frame_bytes")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRow(DirectionIn, "quad")
		m.RecordFrame(OpAppend, 10)
		m.RecordStream()
	})
}
