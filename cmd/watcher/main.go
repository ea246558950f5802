package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/dirble-go/internal/app"
	"github.com/samvad-hq/dirble-go/internal/config"
	"github.com/samvad-hq/dirble-go/internal/logger"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "watcher start failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("watcher", pflag.ContinueOnError)
	once := fs.Bool("once", false, "run a single poll pass and exit")
	fs.String("feeds-file", "", "feeds registry file (YAML or JSON)")
	fs.String("publishers-file", "", "publishers registry file (YAML or JSON)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("metrics-addr", "", "listen address for /metrics, empty to disable")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(changedFlags(fs))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("watcher starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := app.NewWatcher(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize watcher", "error", err.Error())
		return err
	}

	if *once {
		return w.Once(ctx)
	}
	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("watcher run: %w", err)
	}
	return nil
}

// changedFlags keeps only the flags set on the command line so unset flags
// do not shadow environment values.
func changedFlags(fs *pflag.FlagSet) *pflag.FlagSet {
	out := pflag.NewFlagSet(fs.Name(), pflag.ContinueOnError)
	fs.Visit(func(f *pflag.Flag) {
		if f.Name != "once" {
			out.AddFlag(f)
		}
	})
	return out
}
