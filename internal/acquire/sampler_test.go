package acquire

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/angular_computer/internal/angle"
)

type fixedSource struct {
	raw angle.RawSample
	err error
}

func (f *fixedSource) CaptureRaw() (angle.RawSample, error) {
	return f.raw, f.err
}

func TestRunRefusesUncalibrated(t *testing.T) {
	cal := angle.NewCalibrator(340)
	s := NewSampler(&fixedSource{}, cal, angle.NewBuffer(10), time.Millisecond)

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, angle.ErrNotCalibrated)
}

func TestRunStopsOnCancel(t *testing.T) {
	cal := angle.NewCalibrator(340)
	require.NoError(t, cal.Calibrate(angle.RawSample{0, 0}))

	s := NewSampler(&fixedSource{raw: angle.RawSample{1, 2}}, cal, angle.NewBuffer(10), time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sampler did not stop after cancel")
	}
}

func TestSampleOncePushesCalibrated(t *testing.T) {
	cal := angle.NewCalibrator(4095) // 1 degree per count
	require.NoError(t, cal.Calibrate(angle.RawSample{100, 100}))

	buf := angle.NewBuffer(10)
	s := NewSampler(&fixedSource{raw: angle.RawSample{150, 50}}, cal, buf, time.Millisecond)

	s.sampleOnce()

	batch, ok := buf.DrainIfReady(1)
	require.True(t, ok)
	require.Len(t, batch, 1)
	assert.InDelta(t, 50.0, batch[0][0], 1e-9)
	assert.InDelta(t, -50.0, batch[0][1], 1e-9)
	assert.False(t, s.InProgress(), "flag must be cleared after the scan")
}

func TestSampleOnceDropsFailedCapture(t *testing.T) {
	cal := angle.NewCalibrator(340)
	require.NoError(t, cal.Calibrate(angle.RawSample{0}))

	buf := angle.NewBuffer(10)
	s := NewSampler(&fixedSource{err: errors.New("bus stuck")}, cal, buf, time.Millisecond)

	s.sampleOnce()
	assert.Equal(t, 0, buf.Len(), "failed capture must not push")
}

func TestMockSourceShape(t *testing.T) {
	src := NewMockSource(22)
	raw, err := src.CaptureRaw()
	require.NoError(t, err)
	require.Len(t, raw, 22)
	for i, v := range raw {
		assert.GreaterOrEqual(t, v, 0, "channel %d", i)
		assert.LessOrEqual(t, v, angle.ADCMaxCount, "channel %d", i)
	}
}
