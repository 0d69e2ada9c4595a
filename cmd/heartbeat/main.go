package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/plog"
)

func main() {
	// Test cycle: each step reconfigures the same logger with a different heartbeat interval
	steps := []struct {
		interval    int64
		description string
	}{
		{0, "Heartbeats disabled"},
		{1, "Heartbeat every second"},
		{2, "Heartbeat every two seconds"},
		{0, "Heartbeats disabled (final)"},
	}

	logger := plog.NewLogger()

	for _, step := range steps {
		err := logger.ApplyOverride(
			"directory=./logs",
			"name=heartbeat",
			"enable_file=true",
			"level=all",
			fmt.Sprintf("heartbeat_interval_s=%d", step.interval),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to configure logger: %v\n", err)
			os.Exit(1)
		}

		// A running logger restarts its heartbeat when the interval changes
		if err := logger.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start logger: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\n--- Heartbeat interval %ds: %s ---\n", step.interval, step.description)
		logger.Infof("heartbeat test started, interval=%d", step.interval)

		for j := 0; j < 10; j++ {
			logger.Infof("info test log iteration=%d", j)
			logger.Warnf("warning test log iteration=%d", j)
			time.Sleep(100 * time.Millisecond)
		}

		waitTime := 3 * time.Second
		fmt.Printf("Waiting %v for heartbeats...\n", waitTime)
		time.Sleep(waitTime)
	}

	if err := logger.Shutdown(2 * time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to shut down logger: %v\n", err)
	}

	fmt.Println("\nHeartbeat test program completed successfully")
	fmt.Println("Check ./logs/heartbeat.log for OKAY heartbeat records")
}
