package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/lixenwraith/plog"
)

const configFile = "simple_config.toml"

// Example TOML content, loaded under the [plog] table
var tomlContent = `
# Example simple_config.toml
[plog]
  level = "debugging"
  directory = "./simple_logs"
  enable_file = true
  enable_stdout = true
  thread_name = "main"
  max_size_mb = 1
  error_split = true
`

func main() {
	fmt.Println("--- Simple Logger Example ---")

	if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write dummy config: %v\n", err)
	} else {
		fmt.Printf("Created dummy config file: %s\n", configFile)
	}

	cfg, err := plog.NewConfigFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v. Using defaults.\n", err)
		cfg = plog.DefaultConfig()
	}

	if err := plog.ApplyConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logger: %v\n", err)
		os.Exit(1)
	}
	if err := plog.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start logger: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Logger initialized.")

	plog.Debugf("This is a debug message, user_id=%d", 123)
	plog.Infof("Application starting...")
	plog.Okf("Self test passed")
	plog.Warnf("Potential issue detected, threshold=%.2f", 0.95)
	plog.Errorf("An error occurred! code=%d", 500)
	plog.Tracef("entering main loop")

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker := plog.Default().Thread(fmt.Sprintf("worker-%d", id))
			worker.Infof("Goroutine started")
			time.Sleep(time.Duration(50+id*50) * time.Millisecond)
			worker.Okf("Goroutine finished")
		}(i)
	}
	wg.Wait()
	fmt.Println("Goroutines finished.")

	_ = plog.WriteStats(os.Stdout)

	fmt.Println("Shutting down logger...")
	if err := plog.Shutdown(2 * time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "Logger shutdown error: %v\n", err)
	} else {
		fmt.Println("Logger shutdown complete.")
	}

	fmt.Println("--- Example Finished ---")
	fmt.Println("Check log files in './simple_logs'.")
}
