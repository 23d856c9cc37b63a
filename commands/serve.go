package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sitesync/sites-sync/notify"
	"github.com/sitesync/sites-sync/syncer"
	"github.com/sitesync/sites-sync/web"
)

var ServeCmd = Serve{
	command: newCommand(),
	bind:    "127.0.0.1:8080",
}

// Serve runs the daily status form, with a button to sync the sites on demand.
type Serve struct {
	command
	bind string
}

func (cmd *Serve) Name() string {
	return "serve"
}

func (cmd *Serve) Description() string {
	return "Serves the daily work status form"
}

func (cmd *Serve) Usage() string {
	return "[--bind <address>]"
}

func (cmd *Serve) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--env <file>] serve [options]\n", APP)
	fmt.Println()
	fmt.Println("  Serves a form for sending daily work status messages to the TELEGRAM_CHAT_ID chat, with a")
	fmt.Println("  button to sync the sites table from the worksheet. Prometheus metrics are served on /metrics.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    sites-sync serve --bind 0.0.0.0:8080`)
	fmt.Println()
}

func (cmd *Serve) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("serve")

	flagset.StringVar(&cmd.bind, "bind", cmd.bind, "HTTP server bind address")

	return flagset
}

func (cmd *Serve) Execute(args ...any) error {
	cfg, err := cmd.configure(args...)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cmd.bind) == "" {
		return fmt.Errorf("--bind is a required option")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s, err := openStore(ctx, cfg, false)
	if err != nil {
		return err
	}

	defer s.Close()

	var messenger web.Messenger
	if err := cfg.Messenger(); err != nil {
		warnf("%v - status messages are disabled", err)
	} else if telegram, err := notify.NewTelegram(notify.DEFAULT_API, cfg.Telegram.Token, cfg.Telegram.Chat, nil); err != nil {
		return err
	} else {
		messenger = telegram
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := syncer.NewMetrics(registry)

	// credentials are resolved on every press, so a missing service account is
	// reported in the page rather than preventing the form from being served
	run := func(ctx context.Context) (syncer.Result, error) {
		credentials, err := authorise(ctx, cfg)
		if err != nil {
			return syncer.Result{}, err
		}

		options := syncer.Options{
			Spreadsheet: cfg.SpreadsheetID,
			Worksheet:   cfg.Worksheet,
		}

		return newSyncer(credentials, nil, s, metrics).Run(ctx, options)
	}

	server, err := web.NewServer(s, messenger, run, registry)
	if err != nil {
		return err
	}

	return server.ListenAndServe(ctx, cmd.bind)
}
