// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


// Package bootstrap is the operator-facing glue that runs once before
// the pipeline starts: credential cache, interactive prompts, network
// availability, session construction. The core pipeline only ever sees
// its output, an immutable Session.
package bootstrap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Credentials is the flat three-line cache the device keeps between
// boots: SSID, Wi-Fi password, session token, one per line.
type Credentials struct {
	SSID     string
	Password string
	Token    string
}

// Complete reports whether every field is populated.
func (c Credentials) Complete() bool {
	return c.SSID != "" && c.Password != "" && c.Token != ""
}

// LoadCredentials reads the cache file. A missing file is not an error;
// it returns empty credentials so the caller can prompt for them.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Credentials{}, nil
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials: read %s: %w", path, err)
	}

	lines := strings.Split(string(data), "\n")
	var c Credentials
	if len(lines) > 0 {
		c.SSID = strings.TrimSpace(lines[0])
	}
	if len(lines) > 1 {
		c.Password = strings.TrimSpace(lines[1])
	}
	if len(lines) > 2 {
		c.Token = strings.TrimSpace(lines[2])
	}
	return c, nil
}

// SaveCredentials writes the three-line cache. The token is a secret, so
// the file is owner-readable only.
func SaveCredentials(path string, c Credentials) error {
	content := c.SSID + "\n" + c.Password + "\n" + c.Token + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("credentials: write %s: %w", path, err)
	}
	return nil
}

// PromptMissing asks the operator for any unset field, reading answers
// from in and writing prompts to out.
func PromptMissing(in io.Reader, out io.Writer, c Credentials) (Credentials, error) {
	reader := bufio.NewReader(in)

	prompt := func(label, current string) (string, error) {
		if current != "" {
			return current, nil
		}
		fmt.Fprintf(out, "%s: ", label)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("credentials: reading %s: %w", label, err)
		}
		return strings.TrimSpace(line), nil
	}

	var err error
	if c.SSID, err = prompt("SSID", c.SSID); err != nil {
		return c, err
	}
	if c.Password, err = prompt("Password", c.Password); err != nil {
		return c, err
	}
	if c.Token, err = prompt("Token", c.Token); err != nil {
		return c, err
	}
	return c, nil
}

// EnsureCredentials loads the cache, prompts for anything missing and
// persists the result before returning it.
func EnsureCredentials(path string, in io.Reader, out io.Writer) (Credentials, error) {
	c, err := LoadCredentials(path)
	if err != nil {
		return Credentials{}, err
	}
	if c.Complete() {
		return c, nil
	}

	c, err = PromptMissing(in, out, c)
	if err != nil {
		return Credentials{}, err
	}
	if !c.Complete() {
		return Credentials{}, fmt.Errorf("credentials: SSID, password and token are all required")
	}
	if err := SaveCredentials(path, c); err != nil {
		return Credentials{}, err
	}
	return c, nil
}
