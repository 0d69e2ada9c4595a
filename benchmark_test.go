// FILE: benchmark_test.go
package plog

import (
	"testing"
)

// BenchmarkLoggerInfof benchmarks synchronous dispatch with file output
func BenchmarkLoggerInfof(b *testing.B) {
	logger, capture, _ := createTestLogger(b)
	_ = logger.EnableDriver(capture.Name(), false)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Infof("benchmark message %d", i)
	}
}

// BenchmarkLoggerFiltered benchmarks the level-gate rejection path
func BenchmarkLoggerFiltered(b *testing.B) {
	logger, _, _ := createTestLogger(b, "level=production")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debugf("dropped %d", i)
	}
}

// BenchmarkLoggerAsync benchmarks the producer side of each asynchronous transport
func BenchmarkLoggerAsync(b *testing.B) {
	for _, transport := range []string{"queue", "ring"} {
		b.Run(transport, func(b *testing.B) {
			logger, capture, _ := createTestLogger(b, "async=true", "async_transport="+transport, "enable_file=false")
			_ = logger.EnableDriver(capture.Name(), false)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				logger.Infof("benchmark message %d", i)
			}
		})
	}
}

// BenchmarkConcurrentLogging benchmarks the logger's performance under concurrent load
func BenchmarkConcurrentLogging(b *testing.B) {
	logger, capture, _ := createTestLogger(b)
	_ = logger.EnableDriver(capture.Name(), false)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			logger.Infof("concurrent %d", i)
			i++
		}
	})
}
