// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ADC driver selection values.
const (
	ADCDriverMCP3208 = "mcp3208"
	ADCDriverADS1015 = "ads1015"
	ADCDriverMock    = "mock"
)

// BankConfig describes one multiplexer bank.
type BankConfig struct {
	SelectPins []string // 1-4 GPIO names, low select bit first
	EnablePin  string   // active-low enable line, optional
	Channels   int      // populated channels on this bank
	ADCChannel int      // converter input the bank's output is wired to
}

// Config holds all application configuration values. It is loaded once
// during bootstrap and passed by reference into the components; nothing
// mutates it afterwards.
type Config struct {
	// Remote endpoint
	EndpointURL string

	// Bootstrap
	CredentialsFile string

	// Acquisition
	SampleIntervalMS int
	BufferCapacity   int
	PublishMinBatch  int
	RangeDegrees     float64

	// ADC
	ADCDriver    string
	ADCSPIDevice string
	ADCI2CBus    string
	ADCI2CAddr   uint16

	// Multiplexer banks, in scan order. Bank 1 is mandatory, bank 2
	// optional.
	Bank1 BankConfig
	Bank2 BankConfig

	// MQTT mirror (disabled when broker is empty)
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string

	// Reconnect backoff
	ReconnectMinMS int
	ReconnectMaxMS int
}

// Banks returns the configured banks in scan order.
func (c *Config) Banks() []BankConfig {
	banks := []BankConfig{c.Bank1}
	if c.Bank2.Channels > 0 {
		banks = append(banks, c.Bank2)
	}
	return banks
}

// TotalChannels is the length of the sample vectors this configuration
// produces.
func (c *Config) TotalChannels() int {
	n := 0
	for _, b := range c.Banks() {
		n += b.Channels
	}
	return n
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{
		CredentialsFile:  "./credentials.txt",
		SampleIntervalMS: 33,
		BufferCapacity:   10,
		PublishMinBatch:  3,
		RangeDegrees:     340,
		MQTTClientID:     "angular-streamer",
		MQTTTopic:        "angular/samples",
		ReconnectMinMS:   250,
		ReconnectMaxMS:   5000,
	}

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	case "ENDPOINT_URL":
		c.EndpointURL = value
	case "CREDENTIALS_FILE":
		c.CredentialsFile = value

	case "SAMPLE_INTERVAL_MS":
		v, err := parsePositiveInt(key, value)
		if err != nil {
			return err
		}
		c.SampleIntervalMS = v
	case "BUFFER_CAPACITY":
		v, err := parsePositiveInt(key, value)
		if err != nil {
			return err
		}
		c.BufferCapacity = v
	case "PUBLISH_MIN_BATCH":
		v, err := parsePositiveInt(key, value)
		if err != nil {
			return err
		}
		c.PublishMinBatch = v
	case "RANGE_DEGREES":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid RANGE_DEGREES %q: %w", value, err)
		}
		if v <= 0 {
			return fmt.Errorf("RANGE_DEGREES must be positive, got %v", v)
		}
		c.RangeDegrees = v

	case "ADC_DRIVER":
		switch value {
		case ADCDriverMCP3208, ADCDriverADS1015, ADCDriverMock:
			c.ADCDriver = value
		default:
			return fmt.Errorf("ADC_DRIVER must be %s, %s or %s, got %q",
				ADCDriverMCP3208, ADCDriverADS1015, ADCDriverMock, value)
		}
	case "ADC_SPI_DEVICE":
		c.ADCSPIDevice = value
	case "ADC_I2C_BUS":
		c.ADCI2CBus = value
	case "ADC_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid ADC_I2C_ADDR %q: %w", value, err)
		}
		c.ADCI2CAddr = uint16(addr)

	case "BANK1_SELECT_PINS":
		c.Bank1.SelectPins = splitPins(value)
	case "BANK1_ENABLE_PIN":
		c.Bank1.EnablePin = value
	case "BANK1_CHANNELS":
		v, err := parsePositiveInt(key, value)
		if err != nil {
			return err
		}
		c.Bank1.Channels = v
	case "BANK1_ADC_CHANNEL":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid BANK1_ADC_CHANNEL %q: %w", value, err)
		}
		c.Bank1.ADCChannel = v

	case "BANK2_SELECT_PINS":
		c.Bank2.SelectPins = splitPins(value)
	case "BANK2_ENABLE_PIN":
		c.Bank2.EnablePin = value
	case "BANK2_CHANNELS":
		v, err := parsePositiveInt(key, value)
		if err != nil {
			return err
		}
		c.Bank2.Channels = v
	case "BANK2_ADC_CHANNEL":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid BANK2_ADC_CHANNEL %q: %w", value, err)
		}
		c.Bank2.ADCChannel = v

	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "MQTT_TOPIC":
		c.MQTTTopic = value

	case "RECONNECT_MIN_MS":
		v, err := parsePositiveInt(key, value)
		if err != nil {
			return err
		}
		c.ReconnectMinMS = v
	case "RECONNECT_MAX_MS":
		v, err := parsePositiveInt(key, value)
		if err != nil {
			return err
		}
		c.ReconnectMaxMS = v

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set and consistent.
func (c *Config) validate() error {
	if c.EndpointURL == "" {
		return fmt.Errorf("ENDPOINT_URL is required")
	}
	if !strings.HasPrefix(c.EndpointURL, "ws://") && !strings.HasPrefix(c.EndpointURL, "wss://") {
		return fmt.Errorf("ENDPOINT_URL must be a ws:// or wss:// URL, got %q", c.EndpointURL)
	}
	if c.ADCDriver == "" {
		return fmt.Errorf("ADC_DRIVER is required")
	}
	if c.ADCDriver == ADCDriverMCP3208 && c.ADCSPIDevice == "" {
		return fmt.Errorf("ADC_SPI_DEVICE is required for the %s driver", ADCDriverMCP3208)
	}
	if c.Bank1.Channels == 0 {
		return fmt.Errorf("BANK1_CHANNELS is required")
	}

	if c.ADCDriver != ADCDriverMock {
		for i, bank := range c.Banks() {
			if len(bank.SelectPins) < 1 || len(bank.SelectPins) > 4 {
				return fmt.Errorf("BANK%d_SELECT_PINS needs 1-4 pins, got %d", i+1, len(bank.SelectPins))
			}
			if bank.Channels > 1<<len(bank.SelectPins) {
				return fmt.Errorf("BANK%d_CHANNELS (%d) does not fit on %d select lines",
					i+1, bank.Channels, len(bank.SelectPins))
			}
		}
	}

	if c.ReconnectMaxMS < c.ReconnectMinMS {
		return fmt.Errorf("RECONNECT_MAX_MS (%d) below RECONNECT_MIN_MS (%d)", c.ReconnectMaxMS, c.ReconnectMinMS)
	}
	return nil
}

func parsePositiveInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, v)
	}
	return v, nil
}

func splitPins(value string) []string {
	var pins []string
	for _, p := range strings.Split(value, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			pins = append(pins, p)
		}
	}
	return pins
}
