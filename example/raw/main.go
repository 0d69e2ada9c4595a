package main

import (
	"fmt"
	"time"

	"github.com/lixenwraith/plog"
)

// TestPayload defines a struct for testing composite value dumps
type TestPayload struct {
	RequestID uint64
	User      string
	Metrics   map[string]float64
}

func main() {
	fmt.Println("--- Logger Raw Output Test ---")

	byteRecord := []byte("binary\ndata\twith\x00null")
	structRecord := TestPayload{
		RequestID: 9223372036854775807,
		User:      "test_user",
		Metrics: map[string]float64{
			"latency_ms":  15.7,
			"cpu_percent": 88.2,
		},
	}

	logger, err := plog.NewBuilder().
		EnableStdout(true).
		EnableFile(true).
		Directory("./raw_logs").
		Sanitization("txt").
		Build()
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		return
	}
	if err := logger.Start(); err != nil {
		fmt.Printf("Failed to start logger: %v\n", err)
		return
	}
	defer logger.Shutdown(time.Second)

	// Raw records carry no header on the console; composite values are dumped
	fmt.Println("\n[1] Raw values")
	logger.Raw("Byte Record ->", byteRecord)
	logger.Raw("Struct Record ->", structRecord)

	fmt.Println("\n[2] Formatted raw record")
	logger.Rawf("progress %3d%%", 42)

	// The same bytes through a regular record are escaped in the file line
	fmt.Println("\n[3] Header record with control characters")
	logger.Infof("payload %q", byteRecord)

	fmt.Println("\n--- Test Complete, see ./raw_logs/plog.log ---")
}
