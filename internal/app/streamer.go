// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/relabs-tech/angular_computer/internal/acquire"
	"github.com/relabs-tech/angular_computer/internal/angle"
	"github.com/relabs-tech/angular_computer/internal/bootstrap"
	"github.com/relabs-tech/angular_computer/internal/config"
	"github.com/relabs-tech/angular_computer/internal/mux"
	"github.com/relabs-tech/angular_computer/internal/stream"
)

// RunStreamer is the whole pipeline: bootstrap, calibrate, then run the
// sampler and publisher until a shutdown signal arrives.
func RunStreamer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- 1) Bootstrap: credentials and network ----
	creds, err := bootstrap.EnsureCredentials(cfg.CredentialsFile, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	session := bootstrap.NewSession(creds, cfg.EndpointURL)

	if err := bootstrap.WaitForNetwork(ctx, cfg.EndpointURL); err != nil {
		return err
	}

	// ---- 2) Hardware and calibration ----
	source, err := buildSource(cfg)
	if err != nil {
		return err
	}
	if hw, ok := source.(*mux.Array); ok {
		defer hw.DisableAll()
	}

	calibrator := angle.NewCalibrator(cfg.RangeDegrees)
	if err := calibrateAtZero(source, calibrator, os.Stdin, os.Stdout); err != nil {
		return err
	}

	// ---- 3) Wire the pipeline ----
	buffer := angle.NewBuffer(cfg.BufferCapacity)
	sampler := acquire.NewSampler(source, calibrator, buffer,
		time.Duration(cfg.SampleIntervalMS)*time.Millisecond)

	conn := stream.NewConn(session.Endpoint,
		time.Duration(cfg.ReconnectMinMS)*time.Millisecond,
		time.Duration(cfg.ReconnectMaxMS)*time.Millisecond)
	if err := conn.Connect(); err != nil {
		// Not fatal: the publisher reconnects with backoff on its own.
		log.Printf("streamer: initial connect failed, will retry: %v", err)
	}
	defer conn.Close()

	var mirror *stream.Mirror
	if cfg.MQTTBroker != "" {
		mirror, err = stream.NewMirror(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic)
		if err != nil {
			log.Printf("streamer: MQTT mirror disabled: %v", err)
		} else {
			defer mirror.Close()
		}
	}

	publisher := stream.NewPublisher(buffer, conn, sampler, mirror,
		session.Token, cfg.PublishMinBatch, stream.DefaultPollInterval)

	// ---- 4) Run producer and consumer until shutdown ----
	log.Printf("streamer: running, %d channels at %d ms, publishing batches of >=%d to %s",
		cfg.TotalChannels(), cfg.SampleIntervalMS, cfg.PublishMinBatch, session.Endpoint)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := sampler.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("streamer: sampler stopped: %v", err)
			stop()
		}
	}()
	go func() {
		defer wg.Done()
		if err := publisher.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("streamer: publisher stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	wg.Wait()
	log.Println("streamer: shut down")
	return nil
}

// calibrateAtZero is the single manual synchronization point with the
// operator: sensors rest in the zero position, operator confirms, the
// zero offsets are captured.
func calibrateAtZero(source acquire.Source, cal *angle.Calibrator, in io.Reader, out io.Writer) error {
	fmt.Fprint(out, "Place all sensors in the zero position and press Enter to calibrate... ")
	if _, err := bufio.NewReader(in).ReadString('\n'); err != nil && err != io.EOF {
		return fmt.Errorf("calibration: waiting for confirmation: %w", err)
	}

	rawZero, err := source.CaptureRaw()
	if err != nil {
		return fmt.Errorf("calibration: zero-position capture: %w", err)
	}
	if err := cal.Calibrate(rawZero); err != nil {
		return err
	}

	log.Printf("calibration: captured zero position for %d channels (scale %.6f deg/count)",
		len(rawZero), cal.Scale())
	return nil
}
