package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Archer110/nexus/internal/config"
	"github.com/Archer110/nexus/internal/logger"
	"github.com/sirupsen/logrus"
)

const (
	serviceName = "nexus"
	version     = "0.1.0"
)

const usage = `usage: nexus <command> [flags]

commands:
  serve                 run the HTTP server (default)
  migrate               apply database migrations
  seed-products [-n N]  generate catalog products with stock
  seed-orders [-n N]    generate historical orders
  clean-cache           drop every cached cart from Redis
`

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cmd, args, cfg, log); err != nil {
		log.WithError(err).WithField("command", cmd).Error("command failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string, cfg *config.Config, log *logrus.Logger) error {
	switch cmd {
	case "serve":
		return serve(ctx, cfg, log)
	case "migrate":
		return migrate(ctx, cfg, log)
	case "seed-products":
		n, err := countFlag(cmd, args, 1500)
		if err != nil {
			return err
		}
		return seedProducts(ctx, cfg, log, n)
	case "seed-orders":
		n, err := countFlag(cmd, args, 20)
		if err != nil {
			return err
		}
		return seedOrders(ctx, cfg, log, n)
	case "clean-cache":
		return cleanCache(ctx, cfg, log)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func countFlag(cmd string, args []string, def int) (int, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	n := fs.Int("n", def, "number of records to generate")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	if *n <= 0 {
		return 0, fmt.Errorf("-n must be positive, got %d", *n)
	}
	return *n, nil
}
