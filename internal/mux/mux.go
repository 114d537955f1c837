// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


// Package mux drives the analog multiplexer banks that route up to 16
// potentiometers each onto a single converter input.
package mux

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"

	"github.com/relabs-tech/angular_computer/internal/adc"
	"github.com/relabs-tech/angular_computer/internal/angle"
)

// ErrInvalidChannel is returned when a channel index cannot be encoded on
// the bank's select lines.
var ErrInvalidChannel = errors.New("mux: channel index exceeds select-line range")

// SelectPin is the one GPIO capability a select or enable line needs.
// periph's gpio.PinIO satisfies it; tests use in-memory fakes.
type SelectPin interface {
	Out(l gpio.Level) error
}

// Bank is one multiplexer board: 1-4 binary select lines, an active-low
// enable line, and a fixed number of populated channels routed to one
// input of the shared converter.
//
// A Bank is not safe for concurrent use: every read mutates the physical
// select-line state. The sampler goroutine is the only caller.
type Bank struct {
	name       string
	pins       []SelectPin
	enable     SelectPin
	reader     adc.Reader
	adcChannel int
	channels   int
}

// NewBank wires a bank. channels must fit on the given select lines; a
// mismatch is a configuration error and fails immediately rather than at
// read time.
func NewBank(name string, pins []SelectPin, enable SelectPin, reader adc.Reader, adcChannel, channels int) (*Bank, error) {
	if len(pins) < 1 || len(pins) > 4 {
		return nil, fmt.Errorf("mux %s: need 1-4 select pins, got %d", name, len(pins))
	}
	if channels < 1 || channels > 1<<len(pins) {
		return nil, fmt.Errorf("mux %s: %d channels do not fit on %d select lines: %w",
			name, channels, len(pins), ErrInvalidChannel)
	}
	if reader == nil {
		return nil, fmt.Errorf("mux %s: nil ADC reader", name)
	}
	return &Bank{
		name:       name,
		pins:       pins,
		enable:     enable,
		reader:     reader,
		adcChannel: adcChannel,
		channels:   channels,
	}, nil
}

// Name returns the bank's configured name.
func (b *Bank) Name() string { return b.name }

// Channels returns the number of populated channels.
func (b *Bank) Channels() int { return b.channels }

// Select drives the select lines with the binary encoding of ch, bit 0 on
// the first configured line.
func (b *Bank) Select(ch int) error {
	if ch < 0 || ch >= 1<<len(b.pins) {
		return fmt.Errorf("mux %s: channel %d: %w", b.name, ch, ErrInvalidChannel)
	}

	v := ch
	for i, pin := range b.pins {
		if err := pin.Out(gpio.Level(v&1 == 1)); err != nil {
			return fmt.Errorf("mux %s: select line %d: %w", b.name, i, err)
		}
		v >>= 1
	}
	return nil
}

// ReadOne selects ch and performs one conversion on the bank's input.
func (b *Bank) ReadOne(ch int) (int, error) {
	if err := b.Select(ch); err != nil {
		return 0, err
	}
	v, err := b.reader.ReadRaw(b.adcChannel)
	if err != nil {
		return 0, fmt.Errorf("mux %s: channel %d: %w", b.name, ch, err)
	}
	return v, nil
}

// ReadAll scans channels 0..Channels-1 in ascending order and returns the
// raw readings.
func (b *Bank) ReadAll() ([]int, error) {
	out := make([]int, 0, b.channels)
	for ch := 0; ch < b.channels; ch++ {
		v, err := b.ReadOne(ch)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Enable asserts the active-low enable line.
func (b *Bank) Enable() error {
	if b.enable == nil {
		return nil
	}
	if err := b.enable.Out(gpio.Low); err != nil {
		return fmt.Errorf("mux %s: enable: %w", b.name, err)
	}
	return nil
}

// Disable deasserts the active-low enable line.
func (b *Bank) Disable() error {
	if b.enable == nil {
		return nil
	}
	if err := b.enable.Out(gpio.High); err != nil {
		return fmt.Errorf("mux %s: disable: %w", b.name, err)
	}
	return nil
}

// Array owns the ordered list of banks and produces one flat raw vector
// per acquisition, bank-major, channel-minor.
type Array struct {
	banks []*Bank
	total int
}

// NewArray builds the aggregator over the given banks, in scan order.
func NewArray(banks ...*Bank) (*Array, error) {
	if len(banks) == 0 {
		return nil, errors.New("mux: array needs at least one bank")
	}
	total := 0
	for _, b := range banks {
		total += b.channels
	}
	return &Array{banks: banks, total: total}, nil
}

// TotalChannels returns the length of the vectors CaptureRaw produces.
func (a *Array) TotalChannels() int { return a.total }

// CaptureRaw scans every bank in order and concatenates the readings into
// one RawSample.
func (a *Array) CaptureRaw() (angle.RawSample, error) {
	out := make(angle.RawSample, 0, a.total)
	for _, b := range a.banks {
		vals, err := b.ReadAll()
		if err != nil {
			return nil, err
		}
		out = append(out, vals...)
	}
	return out, nil
}

// EnableAll asserts every bank's enable line.
func (a *Array) EnableAll() error {
	for _, b := range a.banks {
		if err := b.Enable(); err != nil {
			return err
		}
	}
	return nil
}

// DisableAll deasserts every bank's enable line.
func (a *Array) DisableAll() error {
	for _, b := range a.banks {
		if err := b.Disable(); err != nil {
			return err
		}
	}
	return nil
}
