package main

import (
	"fmt"
	"os"

	"github.com/panjf2000/gnet/v2"

	"github.com/lixenwraith/plog"
	"github.com/lixenwraith/plog/compat"
)

// Example gnet event handler
type echoServer struct {
	gnet.BuiltinEventEngine
	log *plog.ThreadLogger
}

func (es *echoServer) OnBoot(eng gnet.Engine) gnet.Action {
	es.log.Okf("echo server ready")
	return gnet.None
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	es.log.Debugf("echo %d bytes to %s", len(buf), c.RemoteAddr())
	_, _ = c.Write(buf)
	return gnet.None
}

func main() {
	logger := plog.NewLogger()
	err := logger.ApplyOverride(
		"directory=./gnet_logs",
		"enable_file=true",
		"level=debugging",
		"async=true",
		"async_transport=ring",
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logger: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Shutdown()

	gnetAdapter := compat.NewGnetAdapter(logger)

	err = gnet.Run(
		&echoServer{log: logger.Thread("echo")},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		logger.Errorf("gnet exited: %v", err)
	}
}
