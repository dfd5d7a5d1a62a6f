package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/feedwatch/pkg/classify"
	"github.com/umputun/feedwatch/pkg/config"
	"github.com/umputun/feedwatch/pkg/dedup"
	"github.com/umputun/feedwatch/pkg/feed"
	"github.com/umputun/feedwatch/pkg/journal"
	"github.com/umputun/feedwatch/pkg/notify"
	"github.com/umputun/feedwatch/pkg/scheduler"
	"github.com/umputun/feedwatch/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"feedwatch.yml" description:"configuration file"`
	Token  string `long:"token" env:"TELEGRAM_TOKEN" description:"telegram bot token, overrides config"`
	Dry    bool   `long:"dry" env:"DRY" description:"log messages instead of sending them"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	if opts.NoColor {
		color.NoColor = true
	}
	setupLog(opts.Debug, opts.Token)

	log.Printf("[INFO] starting feedwatch version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] feedwatch failed: %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// run wires all components and blocks until ctx is canceled or any of them fails
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Token != "" {
		cfg.Telegram.Token = opts.Token
	}
	sources := cfg.Sources()

	var notifier scheduler.Notifier
	var tg *notify.Telegram
	if opts.Dry {
		log.Print("[INFO] dry mode, messages are logged and not sent")
		notifier = notify.NewLog(nil, sources, cfg.Telegram.ElevatedHeader)
	} else {
		tg, err = notify.NewTelegram(notify.TelegramParams{
			Token:          cfg.Telegram.Token,
			ChatID:         cfg.Telegram.ChatID,
			Timeout:        cfg.Telegram.Timeout,
			Sources:        sources,
			ElevatedHeader: cfg.Telegram.ElevatedHeader,
		})
		if err != nil {
			return fmt.Errorf("failed to make telegram notifier: %w", err)
		}
		notifier = tg
	}

	// journal is optional, interfaces stay nil when disabled
	var schedJournal scheduler.Journal
	var deliveries server.Deliveries
	if cfg.Journal.Path != "" {
		jrnl, jerr := journal.New(ctx, cfg.Journal.Path)
		if jerr != nil {
			return fmt.Errorf("failed to open journal: %w", jerr)
		}
		defer func() {
			if cerr := jrnl.Close(); cerr != nil {
				log.Printf("[WARN] failed to close journal: %v", cerr)
			}
		}()
		schedJournal, deliveries = jrnl, jrnl
	}

	classifier := classify.New(classify.Config{
		Keywords:       cfg.Watch.Keywords,
		PrimarySource:  cfg.Watch.PrimarySource,
		OfficialAuthor: cfg.Watch.OfficialAuthor,
	})
	coord := scheduler.NewCoordinator(scheduler.CoordinatorParams{
		Sources:    sources,
		Fetcher:    feed.NewHTTPFetcher(cfg.Schedule.FetchTimeout, cfg.Schedule.UserAgent),
		Classifier: classifier,
		Cache:      dedup.New(cfg.Cache.MaxSize, cfg.Cache.TTL),
	})
	disp := scheduler.NewDispatcher(scheduler.DispatcherParams{
		Notifier: notifier,
		Journal:  schedJournal,
		Pacing:   cfg.Schedule.SendPacing,
	})
	sched := scheduler.NewScheduler(scheduler.Params{
		Coordinator:      coord,
		Dispatcher:       disp,
		Interval:         cfg.Schedule.CheckInterval,
		Journal:          schedJournal,
		JournalRetention: cfg.Journal.Retention,
	})
	log.Printf("[INFO] watching %d feeds for keywords %v", len(sources), classifier.Keywords())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := sched.Run(gctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("scheduler: %w", err)
		}
		return nil
	})

	if tg != nil && cfg.Telegram.Commands {
		g.Go(func() error { return tg.Run(gctx, sched) })
	}

	if listen, _ := cfg.GetServerConfig(); listen != "" {
		srv := server.New(cfg, sched, deliveries, revision, opts.Debug)
		g.Go(func() error { return srv.Run(gctx) })
	}

	return g.Wait()
}

// setupLog configures lgr and the std logger, secrets are masked in the output
func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	var nonEmpty []string
	for _, s := range secs {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) > 0 {
		logOpts = append(logOpts, lgr.Secret(nonEmpty...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
