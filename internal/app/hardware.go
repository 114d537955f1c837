// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/angular_computer/internal/acquire"
	"github.com/relabs-tech/angular_computer/internal/adc"
	"github.com/relabs-tech/angular_computer/internal/config"
	"github.com/relabs-tech/angular_computer/internal/mux"
)

// buildSource assembles the acquisition source described by the config:
// the ADC back-end, the multiplexer banks on their GPIO lines, and the
// aggregator over them. The mock driver needs no hardware at all.
func buildSource(cfg *config.Config) (acquire.Source, error) {
	if cfg.ADCDriver == config.ADCDriverMock {
		log.Printf("hardware: using mock source with %d channels", cfg.TotalChannels())
		return acquire.NewMockSource(cfg.TotalChannels()), nil
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("hardware: periph host init: %w", err)
	}

	reader, err := buildADC(cfg)
	if err != nil {
		return nil, err
	}

	banks := make([]*mux.Bank, 0, 2)
	for i, bc := range cfg.Banks() {
		name := fmt.Sprintf("bank%d", i+1)
		bank, err := buildBank(name, bc, reader)
		if err != nil {
			return nil, err
		}
		banks = append(banks, bank)
		log.Printf("hardware: %s ready: %d channels on ADC input %d", name, bc.Channels, bc.ADCChannel)
	}

	arr, err := mux.NewArray(banks...)
	if err != nil {
		return nil, err
	}
	if err := arr.EnableAll(); err != nil {
		return nil, err
	}

	log.Printf("hardware: %d total channels across %d banks", arr.TotalChannels(), len(banks))
	return arr, nil
}

func buildADC(cfg *config.Config) (adc.Reader, error) {
	switch cfg.ADCDriver {
	case config.ADCDriverMCP3208:
		return adc.NewMCP3208(cfg.ADCSPIDevice)
	case config.ADCDriverADS1015:
		return adc.NewADS1015(cfg.ADCI2CBus, cfg.ADCI2CAddr)
	default:
		return nil, fmt.Errorf("hardware: unsupported ADC driver %q", cfg.ADCDriver)
	}
}

func buildBank(name string, bc config.BankConfig, reader adc.Reader) (*mux.Bank, error) {
	pins := make([]mux.SelectPin, 0, len(bc.SelectPins))
	for _, pinName := range bc.SelectPins {
		pin := gpioreg.ByName(pinName)
		if pin == nil {
			return nil, fmt.Errorf("hardware: %s select pin %q not found", name, pinName)
		}
		pins = append(pins, pin)
	}

	var enable mux.SelectPin
	if bc.EnablePin != "" {
		pin := gpioreg.ByName(bc.EnablePin)
		if pin == nil {
			return nil, fmt.Errorf("hardware: %s enable pin %q not found", name, bc.EnablePin)
		}
		enable = pin
	}

	return mux.NewBank(name, pins, enable, reader, bc.ADCChannel, bc.Channels)
}
