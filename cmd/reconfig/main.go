package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/plog"
)

// Simulate rapid reconfiguration while another goroutine logs
func main() {
	var count atomic.Int64

	cfg := plog.DefaultConfig()
	cfg.EnableStdout = false
	cfg.EnableFile = true
	if err := plog.ApplyConfig(cfg); err != nil {
		fmt.Printf("Initial config error: %v\n", err)
		return
	}
	if err := plog.Start(); err != nil {
		fmt.Printf("Start error: %v\n", err)
		return
	}

	stop := make(chan struct{})
	go func() {
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			plog.Infof("test log %d", i)
			count.Add(1)
			time.Sleep(time.Millisecond)
		}
	}()

	// Alternate transports and ring sizes to force processor restarts
	for i := 0; i < 10; i++ {
		transport := "queue"
		if i%2 == 1 {
			transport = "ring"
		}
		err := plog.ApplyOverride(
			"async=true",
			"async_transport="+transport,
			fmt.Sprintf("ring_capacity=%d", 100*(i+1)),
		)
		if err != nil {
			fmt.Printf("Reconfiguration error: %v\n", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)
	close(stop)
	fmt.Printf("Total logs attempted: %d\n", count.Load())

	_ = plog.Flush(time.Second)
	_ = plog.WriteStats(os.Stdout)

	if err := plog.Shutdown(time.Second); err != nil {
		fmt.Printf("Shutdown error: %v\n", err)
	}
}
