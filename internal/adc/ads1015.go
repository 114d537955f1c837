package adc

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
)

// ADS1015 drives the 12-bit I2C converter. Only the four single-ended
// inputs are usable; the chip reports signed counts, so a single-ended
// reading spans half the nominal resolution.
type ADS1015 struct {
	mu   sync.Mutex
	bus  i2c.BusCloser
	pins [4]ads1x15.PinADC
}

// NewADS1015 opens the I2C bus ("" selects the first available one) and
// prepares all four single-ended inputs at the full 3.3 V range.
func NewADS1015(i2cBus string, addr uint16) (*ADS1015, error) {
	bus, err := i2creg.Open(i2cBus)
	if err != nil {
		return nil, fmt.Errorf("ads1015: I2C open (%q): %w", i2cBus, err)
	}

	opts := ads1x15.DefaultOpts
	if addr != 0 {
		opts.I2cAddress = addr
	}

	dev, err := ads1x15.NewADS1015(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("ads1015: device init: %w", err)
	}

	d := &ADS1015{bus: bus}
	channels := [4]ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3}
	for i, ch := range channels {
		pin, err := dev.PinForChannel(ch, 3300*physic.MilliVolt, 1660*physic.Hertz, ads1x15.SaveEnergy)
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("ads1015: channel %d setup: %w", i, err)
		}
		d.pins[i] = pin
	}
	return d, nil
}

// ReadRaw performs one single-ended conversion on the given channel. The
// signed 12-bit register value is left-aligned in 16 bits; shift it back
// and clamp below-ground noise to zero so callers always see 0-2047.
func (d *ADS1015) ReadRaw(channel int) (int, error) {
	if channel < 0 || channel > 3 {
		return 0, fmt.Errorf("ads1015: channel %d out of range [0,3]", channel)
	}

	d.mu.Lock()
	sample, err := d.pins[channel].Read()
	d.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("ads1015: channel %d read: %w", channel, err)
	}

	raw := int(sample.Raw) >> 4
	if raw < 0 {
		raw = 0
	}
	return raw, nil
}

// Close halts the converter pins and releases the I2C bus.
func (d *ADS1015) Close() error {
	for _, pin := range d.pins {
		if pin != nil {
			pin.Halt()
		}
	}
	return d.bus.Close()
}
