// Command watch runs the client poller against a deployed telemetry service
// and prints the live presence count as it updates.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KevinAcruz/acru/internal/logger"
	"github.com/KevinAcruz/acru/internal/poller"
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:8080", "telemetry service base URL")
		heartbeat   = flag.Duration("heartbeat", 60*time.Second, "heartbeat interval")
		summary     = flag.Duration("summary", 15*time.Second, "summary poll interval")
		sessionFile = flag.String("session-file", "", "file persisting the session id across runs")
	)
	flag.Parse()

	logger.Init()

	p, err := poller.New(*baseURL, poller.Options{
		HeartbeatInterval: *heartbeat,
		SummaryInterval:   *summary,
		SessionFile:       *sessionFile,
	})
	if err != nil {
		logger.Fatal("failed to start poller", map[string]any{
			"error": err.Error(),
		})
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger.Info("watching", map[string]any{
		"url":     *baseURL,
		"session": p.SessionID(),
	})

	go p.Run(ctx)

	ticker := time.NewTicker(*summary)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s, err := p.Snapshot()
			if err != nil {
				fmt.Printf("telemetry unavailable: %v\n", err)
				continue
			}
			fmt.Printf("active users: %d | recent pings: %d | updated %s\n",
				s.ActiveUsers, len(s.RecentPings), s.UpdatedAt)
		}
	}
}
