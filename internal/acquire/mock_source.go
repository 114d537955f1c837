package acquire

import (
	"math"
	"time"

	"github.com/relabs-tech/angular_computer/internal/angle"
)

type mockSource struct {
	start    time.Time
	channels int
}

// NewMockSource creates a source that generates smooth changing raw
// vectors, for development without the sensor array attached.
func NewMockSource(channels int) Source {
	return &mockSource{start: time.Now(), channels: channels}
}

func (m *mockSource) CaptureRaw() (angle.RawSample, error) {
	elapsed := time.Since(m.start).Seconds()

	raw := make(angle.RawSample, m.channels)
	for i := range raw {
		v := 2048 + int(1500*math.Sin(elapsed+float64(i)*0.3))
		if v < 0 {
			v = 0
		}
		if v > angle.ADCMaxCount {
			v = angle.ADCMaxCount
		}
		raw[i] = v
	}
	return raw, nil
}
