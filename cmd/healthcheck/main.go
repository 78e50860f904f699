// Healthcheck probes the local Hearth API and exits 0 when it answers.
//
// Intended as a container HEALTHCHECK binary: it loads the same config
// file as the service, presents the shared access key, and calls /ping
// exactly once — a refused connection means unhealthy, not retry.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nerrad567/hearth-core/internal/infrastructure/caller"
	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
	"github.com/nerrad567/hearth-core/internal/infrastructure/logging"
	"github.com/nerrad567/hearth-core/internal/trace"
)

const (
	defaultConfigPath = "configs/config.yaml"

	// probeTimeout bounds the whole probe. A healthy service answers /ping
	// in milliseconds; anything slower counts as unhealthy.
	probeTimeout = 5 * time.Second
)

func main() {
	if err := probe(); err != nil {
		fmt.Fprintf(os.Stderr, "unhealthy: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("healthy")
}

func probe() error {
	configPath := os.Getenv("HEARTH_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	scheme := "http"
	if cfg.API.TLS.Enabled {
		scheme = "https"
	}
	url := fmt.Sprintf("%s://127.0.0.1:%d/ping", scheme, cfg.API.Port)

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	probeCaller := caller.New(cfg.Caller, cfg.Security.ClientAccessKey, trace.NewInstanceID(), logging.Default())

	var out struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := probeCaller.Get(ctx, url, &out, caller.NoRetry()); err != nil {
		return err
	}

	if out.Data.Status != "ok" {
		return fmt.Errorf("unexpected status %q", out.Data.Status)
	}
	return nil
}
