// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/angular_computer/internal/app"
	"github.com/relabs-tech/angular_computer/internal/config"
)

func main() {
	configPath := flag.String("config", "./streamer_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting angular-computer streamer (sensor array → websocket)")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunStreamer(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
