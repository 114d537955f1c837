// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


// Package acquire runs the periodic acquisition loop: scan the banks,
// calibrate the vector, stage it for the publisher.
package acquire

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/relabs-tech/angular_computer/internal/angle"
)

// Source produces one raw vector per call. mux.Array is the hardware
// implementation; MockSource runs without hardware.
type Source interface {
	CaptureRaw() (angle.RawSample, error)
}

// DefaultInterval is the acquisition period, roughly 30 Hz.
const DefaultInterval = 33 * time.Millisecond

// Sampler is the producer side of the pipeline. It owns the acquisition
// tick and is the only writer into the buffer. A tick never blocks on
// the network; the buffer push is a short critical section.
type Sampler struct {
	source     Source
	calibrator *angle.Calibrator
	buffer     *angle.Buffer
	interval   time.Duration

	inProgress atomic.Bool
}

// NewSampler wires the producer. A non-positive interval falls back to
// DefaultInterval.
func NewSampler(src Source, cal *angle.Calibrator, buf *angle.Buffer, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{
		source:     src,
		calibrator: cal,
		buffer:     buf,
		interval:   interval,
	}
}

// InProgress reports whether a scan is currently underway. The publisher
// checks it before starting a drain check so it never observes the
// aggregator mid-scan; the buffer's own lock is the actual correctness
// barrier.
func (s *Sampler) InProgress() bool {
	return s.inProgress.Load()
}

// Run ticks until ctx is cancelled. The calibrator must be ready before
// Run starts; an uncalibrated transform is a programming error upstream
// and stops the loop.
func (s *Sampler) Run(ctx context.Context) error {
	if !s.calibrator.Ready() {
		return angle.ErrNotCalibrated
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sampleOnce()
		}
	}
}

func (s *Sampler) sampleOnce() {
	s.inProgress.Store(true)
	defer s.inProgress.Store(false)

	raw, err := s.source.CaptureRaw()
	if err != nil {
		// A failed scan drops this tick; the hardware read is retried on
		// the next one.
		log.Printf("sampler: capture error: %v", err)
		return
	}

	sample, err := s.calibrator.Transform(raw)
	if err != nil {
		log.Printf("sampler: transform error: %v", err)
		return
	}

	s.buffer.Push(sample)
}
