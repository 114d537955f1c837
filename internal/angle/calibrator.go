// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package angle

import (
	"errors"
	"fmt"
)

// ErrNotCalibrated is returned by Transform before a zero position has
// been captured.
var ErrNotCalibrated = errors.New("calibrator: zero position not captured")

// Calibrator converts raw ADC vectors into degrees using a fixed linear
// scale and a per-channel zero offset captured once at startup.
//
// The scale is derived from the mechanical range of the potentiometers
// and the converter resolution, never hardcoded per device:
//
//	scale = rangeDegrees / (2^bits - 1)
//	out[i] = raw[i]*scale - zero[i]*scale
type Calibrator struct {
	scale float64
	zero  []float64
	ready bool
}

// NewCalibrator builds a calibrator for sensors covering rangeDegrees of
// mechanical travel across the full ADC span.
func NewCalibrator(rangeDegrees float64) *Calibrator {
	return &Calibrator{scale: rangeDegrees / float64(ADCMaxCount)}
}

// Scale returns the degrees-per-count factor in use.
func (c *Calibrator) Scale() float64 { return c.scale }

// Ready reports whether a zero position has been captured.
func (c *Calibrator) Ready() bool { return c.ready }

// Calibrate stores the zero-position offsets, pre-scaled to degrees.
// It is meant to be called exactly once, after the operator has confirmed
// the sensors are resting in the zero position.
func (c *Calibrator) Calibrate(rawZero RawSample) error {
	if len(rawZero) == 0 {
		return fmt.Errorf("calibrator: empty zero-position sample")
	}
	zero := make([]float64, len(rawZero))
	for i, v := range rawZero {
		zero[i] = float64(v) * c.scale
	}
	c.zero = zero
	c.ready = true
	return nil
}

// Transform converts one raw vector to degrees. It fails with
// ErrNotCalibrated until Calibrate has run, and rejects vectors whose
// length differs from the captured zero position.
func (c *Calibrator) Transform(raw RawSample) (Sample, error) {
	if !c.ready {
		return nil, ErrNotCalibrated
	}
	if len(raw) != len(c.zero) {
		return nil, fmt.Errorf("calibrator: sample length %d, calibrated for %d channels", len(raw), len(c.zero))
	}
	out := make(Sample, len(raw))
	for i, v := range raw {
		out[i] = float64(v)*c.scale - c.zero[i]
	}
	return out, nil
}
