// Command dirble queries the Dirble radio directory from the shell and prints
// the JSON result.
//
//	dirble [global flags] <command> [flags] [args]
//	dirble popular --per-page 5
//	dirble station 42
//	dirble search smooth jazz
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/dirble-go/internal/app"
	"github.com/samvad-hq/dirble-go/internal/config"
	"github.com/samvad-hq/dirble-go/internal/logger"
	"github.com/samvad-hq/dirble-go/pkg/dirble"
	"github.com/spf13/pflag"
)

const exitUsage = 2

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(exitUsage)
		}
		fmt.Fprintf(os.Stderr, "dirble: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := pflag.NewFlagSet("dirble", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(stderr)
	global.String("dirble-api-key", "", "API key (default $DIRBLE_API_KEY)")
	global.String("dirble-base-url", "", "API root URL")
	global.Int64("dirble-timeout-seconds", 0, "request timeout in seconds")
	global.String("log-level", "", "log level: debug, info, warn, error")
	global.Usage = func() { printUsage(stderr, global) }

	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		fmt.Fprintln(stderr, err)
		printUsage(stderr, global)
		return errUsage
	}

	rest := global.Args()
	if len(rest) == 0 {
		printUsage(stderr, global)
		return errUsage
	}
	cmd, ok := lookup(rest[0])
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		printUsage(stderr, global)
		return errUsage
	}

	fs := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var page dirble.Page
	if cmd.paged {
		fs.IntVar(&page.Page, "page", 0, "page number")
		fs.IntVar(&page.PerPage, "per-page", 0, "results per page")
		fs.IntVar(&page.Offset, "offset", 0, "result offset")
	}
	if err := fs.Parse(rest[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		fmt.Fprintln(stderr, err)
		fmt.Fprintf(stderr, "usage: dirble %s %s\n", cmd.name, cmd.usage)
		return errUsage
	}
	cmdArgs := fs.Args()
	if (cmd.nargs > 0 && len(cmdArgs) != cmd.nargs) || (cmd.nargs < 0 && len(cmdArgs) == 0) {
		fmt.Fprintf(stderr, "usage: dirble %s %s\n", cmd.name, cmd.usage)
		return errUsage
	}

	cfg, err := config.Load(changedFlags(global))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.InitWriter(cfg, stderr)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	client, err := app.NewDirbleClient(cfg, log)
	if err != nil {
		return err
	}

	result, err := cmd.run(ctx, client, page, cmdArgs)
	if err != nil {
		return describe(err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// describe turns API failures into a one-line message.
func describe(err error) error {
	var apiErr *dirble.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s (HTTP %d)", apiErr.Message, apiErr.StatusCode)
	}
	return err
}

func changedFlags(fs *pflag.FlagSet) *pflag.FlagSet {
	out := pflag.NewFlagSet(fs.Name(), pflag.ContinueOnError)
	fs.Visit(func(f *pflag.Flag) { out.AddFlag(f) })
	return out
}

func printUsage(w io.Writer, global *pflag.FlagSet) {
	fmt.Fprintln(w, "usage: dirble [global flags] <command> [--page N --per-page N --offset N] [args]")
	fmt.Fprintln(w, "\ncommands:")
	for _, cmd := range commands {
		paged := ""
		if cmd.paged {
			paged = " (paged)"
		}
		fmt.Fprintf(w, "  %-20s %s%s\n", cmd.name, cmd.usage, paged)
	}
	fmt.Fprintln(w, "\nglobal flags:")
	fmt.Fprint(w, global.FlagUsages())
}
