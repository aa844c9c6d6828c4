package anomaly

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectZeroBaseline(t *testing.T) {
	for _, current := range []float64{0, 0.01, 10, 1e9} {
		v := Detect(current, 0, DefaultThreshold)
		assert.False(t, v.IsAnomaly, "current=%v", current)
		assert.Nil(t, v.Ratio)
	}
}

func TestDetectRatio(t *testing.T) {
	tests := []struct {
		name      string
		current   float64
		previous  float64
		threshold float64
		anomaly   bool
		ratio     float64
	}{
		{"exactly at threshold", 150.0, 100.0, 1.5, true, 1.5},
		{"just below threshold", 149.999, 100.0, 1.5, false, 1.49999},
		{"large spike", 500, 100, 1.5, true, 5},
		{"decrease is not flagged", 10, 100, 1.5, false, 0.1},
		{"custom threshold", 120, 100, 1.2, true, 1.2},
		{"non-positive threshold uses default", 140, 100, 0, false, 1.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Detect(tt.current, tt.previous, tt.threshold)
			require.NotNil(t, v.Ratio)
			assert.Equal(t, tt.anomaly, v.IsAnomaly)
			assert.InDelta(t, tt.ratio, *v.Ratio, 1e-9)
			assert.Equal(t, tt.current, v.Current)
			assert.Equal(t, tt.previous, v.Previous)
		})
	}
}

func TestDetectDefaultThresholdRecorded(t *testing.T) {
	v := Detect(1, 1, -3)
	assert.Equal(t, DefaultThreshold, v.Threshold)
}

func TestMessageFormat(t *testing.T) {
	msg := Message(Detect(150, 100, 1.5))
	assert.Equal(t, "cost spike detected: ratio 1.50 (current 150.0000 USD, previous 100.0000 USD, threshold 1.50)", msg)

	ratioIdx := strings.Index(msg, "1.50")
	currentIdx := strings.Index(msg, "150.0000")
	previousIdx := strings.Index(msg, "100.0000")
	assert.True(t, ratioIdx < currentIdx && currentIdx < previousIdx)

	msg = Message(Detect(12.3456789, 10, 1.5))
	assert.Contains(t, msg, "cost within threshold")
	assert.Contains(t, msg, "ratio 1.23")
	assert.Contains(t, msg, "current 12.3457 USD")
	assert.Contains(t, msg, "previous 10.0000 USD")
}

func TestMessageWithoutBaseline(t *testing.T) {
	msg := Message(Detect(42, 0, 1.5))
	assert.Contains(t, msg, "ratio n/a")
	assert.Contains(t, msg, "current 42.0000 USD")
	assert.Contains(t, msg, "previous 0.0000 USD")
}
