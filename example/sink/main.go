package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/plog"
	"github.com/lixenwraith/plog/driver"
	"github.com/lixenwraith/plog/formatter"
	"github.com/lixenwraith/plog/sanitizer"
)

// Routes records to a serial-style transmitter and a memory ring next to the console
func main() {
	memory := make([]byte, 16*128)
	ring, err := driver.NewMemory(memory, 128)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create memory driver: %v\n", err)
		os.Exit(1)
	}

	// Stdout stands in for the UART peripheral
	uartFmt := formatter.New(sanitizer.New().Policy(sanitizer.PolicyTxt)).Color(false)
	uart := driver.NewUART(driver.WriterTransmitter{W: os.Stdout}, uartFmt, driver.DefaultTransmitTimeout)

	logger, err := plog.NewBuilder().
		EnableStdout(false).
		LevelString("debugging").
		ThreadName("sensor").
		Driver(uart, true).
		Driver(ring, true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start logger: %v\n", err)
		os.Exit(1)
	}

	for i := 0; i < 20; i++ {
		logger.Infof("sample %d temperature=%.1f", i, 20.0+float64(i)/10)
	}
	logger.Warnf("threshold crossed")
	logger.Rawf("raw frame 0x%04x", 0xbeef)

	// Turning the transmitter off leaves the memory ring recording
	_ = logger.EnableDriver(uart.Name(), false)
	logger.Debugf("only in memory")

	fmt.Println("\n--- Memory ring contents (oldest first) ---")
	for _, entry := range ring.Entries() {
		fmt.Printf("[%02d] seq=%d %s\n", entry.Index, entry.Seq, entry.Text)
	}

	_ = logger.WriteStats(os.Stdout)
	_ = logger.Shutdown(time.Second)
}
