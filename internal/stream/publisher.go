// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package stream

import (
	"context"
	"log"
	"time"

	"github.com/relabs-tech/angular_computer/internal/angle"
)

// Transport is what the publisher needs from the connection manager.
type Transport interface {
	Send(payload []byte) error
	Reconnect(ctx context.Context) error
}

// Gate lets the publisher defer a drain check while an acquisition scan
// is underway. The sampler implements it.
type Gate interface {
	InProgress() bool
}

const (
	// DefaultMinBatch is the smallest batch worth a network round trip.
	DefaultMinBatch = 3
	// DefaultPollInterval is the pause between drain checks.
	DefaultPollInterval = time.Millisecond
)

// Publisher is the consumer side of the pipeline: poll the buffer, drain
// a full batch, frame it with the session token, ship it. Delivery is
// at-most-once: a batch that fails to send is dropped, and the next
// iteration reconnects before draining again.
type Publisher struct {
	buffer    *angle.Buffer
	transport Transport
	gate      Gate
	mirror    *Mirror

	token    string
	minBatch int
	poll     time.Duration
}

// NewPublisher wires the consumer. gate and mirror may be nil.
func NewPublisher(buf *angle.Buffer, tr Transport, gate Gate, mirror *Mirror, token string, minBatch int, poll time.Duration) *Publisher {
	if minBatch <= 0 {
		minBatch = DefaultMinBatch
	}
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Publisher{
		buffer:    buf,
		transport: tr,
		gate:      gate,
		mirror:    mirror,
		token:     token,
		minBatch:  minBatch,
		poll:      poll,
	}
}

// Run loops until ctx is cancelled. Transport errors never stop the loop;
// drop-and-reconnect is the system's sole resilience mechanism.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.poll):
		}

		if p.gate != nil && p.gate.InProgress() {
			continue
		}

		batch, ok := p.buffer.DrainIfReady(p.minBatch)
		if !ok {
			continue
		}

		if err := p.publish(batch); err != nil {
			log.Printf("publisher: dropped batch of %d: %v", len(batch), err)
			if err := p.transport.Reconnect(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("publisher: reconnect failed: %v", err)
			}
		}
	}
}

func (p *Publisher) publish(batch []angle.Sample) error {
	payload, err := EncodeBatch(p.token, batch)
	if err != nil {
		// An unencodable batch cannot succeed on retry either; drop it
		// without touching the connection.
		log.Printf("publisher: %v", err)
		return nil
	}

	if err := p.transport.Send(payload); err != nil {
		return err
	}

	if p.mirror != nil {
		p.mirror.Publish(batch)
	}
	return nil
}
