package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/plog"
	"github.com/lixenwraith/plog/compat"
)

func main() {
	logger, err := plog.NewBuilder().
		Directory("./fasthttp_logs").
		EnableFile(true).
		LevelString("all").
		Async("queue").
		ErrorSplit(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Shutdown()

	fasthttpAdapter := compat.NewFastHTTPAdapter(
		logger,
		compat.WithDefaultLevel(plog.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)

	access := logger.Thread("http")
	server := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			ctx.SetContentType("text/plain")
			fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
			access.Infof("%s %s from %s", ctx.Method(), ctx.Path(), ctx.RemoteAddr())
		},
		Logger: fasthttpAdapter,

		Name:              "MyServer",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		logger.Errorf("server exited: %v", err)
	}
}

func customLevelDetector(msg string) plog.Level {
	if strings.Contains(msg, "connection cannot be served") {
		return plog.LevelWarn
	}
	if strings.Contains(msg, "error when serving connection") {
		return plog.LevelError
	}
	return compat.DetectLogLevel(msg)
}
