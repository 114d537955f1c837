package app

import (
	"fmt"
	"log"
	"os"

	"github.com/relabs-tech/angular_computer/internal/angle"
	"github.com/relabs-tech/angular_computer/internal/config"
)

// RunCalibration is a bench diagnostic: capture the zero position and a
// few live vectors, print them raw and in degrees, and exit. Nothing is
// persisted and nothing touches the network.
func RunCalibration(cfg *config.Config) error {
	source, err := buildSource(cfg)
	if err != nil {
		return err
	}

	calibrator := angle.NewCalibrator(cfg.RangeDegrees)
	if err := calibrateAtZero(source, calibrator, os.Stdin, os.Stdout); err != nil {
		return err
	}

	log.Println("calibration: capturing three live vectors")
	for i := 0; i < 3; i++ {
		raw, err := source.CaptureRaw()
		if err != nil {
			return fmt.Errorf("calibration: capture %d: %w", i, err)
		}
		sample, err := calibrator.Transform(raw)
		if err != nil {
			return err
		}

		fmt.Printf("raw %d:        %v\n", i, raw)
		fmt.Printf("calibrated %d:", i)
		for _, v := range sample {
			fmt.Printf(" %7.2f", v)
		}
		fmt.Println()
	}

	return nil
}
