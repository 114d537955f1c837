// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package adc

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// MCP3208 drives the 12-bit 8-channel SPI converter of the same name.
type MCP3208 struct {
	mu   sync.Mutex
	port spi.PortCloser
	conn spi.Conn
}

// NewMCP3208 opens the SPI device (e.g. "/dev/spidev0.0") and configures
// the bus for the converter.
func NewMCP3208(spiDev string) (*MCP3208, error) {
	port, err := spireg.Open(spiDev)
	if err != nil {
		return nil, fmt.Errorf("mcp3208: SPI open (%s): %w", spiDev, err)
	}

	conn, err := port.Connect(1*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("mcp3208: SPI connect: %w", err)
	}

	return &MCP3208{port: port, conn: conn}, nil
}

// ReadRaw performs one single-ended conversion on the given channel.
func (d *MCP3208) ReadRaw(channel int) (int, error) {
	if channel < 0 || channel > 7 {
		return 0, fmt.Errorf("mcp3208: channel %d out of range [0,7]", channel)
	}

	// Start bit, single-ended mode, 3-bit channel select, then clocks to
	// shift out the 12-bit result.
	tx := [3]byte{
		0x06 | byte(channel>>2),
		byte(channel&0x03) << 6,
		0x00,
	}
	var rx [3]byte

	d.mu.Lock()
	err := d.conn.Tx(tx[:], rx[:])
	d.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("mcp3208: SPI transfer: %w", err)
	}

	return int(rx[1]&0x0F)<<8 | int(rx[2]), nil
}

// Close releases the SPI port.
func (d *MCP3208) Close() error {
	return d.port.Close()
}
