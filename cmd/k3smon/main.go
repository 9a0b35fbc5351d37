// Command k3smon drives the MCP monitoring client from the terminal:
//
//	k3smon -config config.yaml tools
//	k3smon -config config.yaml call list_pods '{"namespace":"kube-system"}'
//	k3smon -config config.yaml ping
//	k3smon -config config.yaml health
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mcpmon/client"
	"mcpmon/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	isDebug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// .env is optional; real environments set variables directly.
	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	level := parseLevel(cfg.Logging.Level)
	if *isDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	}))
	slog.SetDefault(logger)

	if cfg.Server.MetricsPort > 0 {
		go serveMetrics(cfg.Server.MetricsPort)
	}

	if err := run(cfg, logger, flag.Args()); err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, args []string) error {
	opts, err := cfg.ClientOptions()
	if err != nil {
		return err
	}
	opts.Logger = logger

	c, err := client.New(opts)
	if err != nil {
		return err
	}
	if err := c.Connect(); err != nil {
		return err
	}
	defer c.Close()

	ctx := context.Background()
	if len(args) == 0 {
		args = []string{"ping"}
	}

	switch args[0] {
	case "ping":
		if err := c.Ping(ctx); err != nil {
			return err
		}
		fmt.Println("pong")
		return nil
	case "tools":
		tools, err := c.ListTools(ctx, false)
		if err != nil {
			return err
		}
		return printJSON(tools)
	case "health":
		raw, err := c.GetClusterHealth(ctx)
		if err != nil {
			return err
		}
		return printJSON(json.RawMessage(raw))
	case "call":
		if len(args) < 2 {
			return fmt.Errorf("usage: call <tool> [json-args]")
		}
		var toolArgs map[string]any
		if len(args) > 2 {
			if err := json.Unmarshal([]byte(args[2]), &toolArgs); err != nil {
				return fmt.Errorf("tool arguments must be a JSON object: %w", err)
			}
		}
		raw, err := c.CallTool(ctx, args[1], toolArgs)
		if err != nil {
			return err
		}
		return printJSON(json.RawMessage(raw))
	}
	return fmt.Errorf("unknown command %q (want ping, tools, health, or call)", args[0])
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func serveMetrics(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	slog.Info("Serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Metrics listener failed", "error", err)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
