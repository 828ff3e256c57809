// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sepehrz/filterwatch/internal/config"
	"github.com/sepehrz/filterwatch/internal/history"
	"github.com/sepehrz/filterwatch/internal/httpapi"
	"github.com/sepehrz/filterwatch/internal/logger"
	"github.com/sepehrz/filterwatch/internal/metrics"
	"github.com/sepehrz/filterwatch/internal/telegram"
	"github.com/sepehrz/filterwatch/src/filterwatch"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the periodic checker and the operator HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	log, err := logger.New(cfg.Log.Dir, runningInTTY())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	registry := openRegistry(cfg)

	var hist *history.Store
	if cfg.History.Driver != "" {
		hist, err = history.Open(cfg.History.Driver, cfg.History.DSN, log)
		if err != nil {
			return err
		}
		log.Infow("check history enabled", "driver", cfg.History.Driver)
	}

	var notifier filterwatch.Notifier
	if cfg.Notify.TelegramToken != "" {
		notifier = countingNotifier{
			inner: telegram.New(cfg.Notify.TelegramToken, cfg.Notify.TelegramAPIURL),
		}
		log.Infow("telegram notifier enabled", "recipients", len(cfg.Notify.Admins))
	}

	recorder := func(ctx context.Context, ev filterwatch.CheckEvent) {
		metrics.DomainChecksTotal.WithLabelValues(string(ev.Verdict)).Inc()
		if ev.Verdict == filterwatch.VerdictFiltered {
			metrics.FilteredDetectedTotal.Inc()
		}
		if hist != nil {
			hist.Recorder()(ctx, ev)
		}
	}

	opts := append(watcherOptions(cfg),
		filterwatch.WithLogger(log),
		filterwatch.WithRecipients(cfg.Notify.Admins...),
		filterwatch.WithRecorder(recorder),
	)
	if notifier != nil {
		opts = append(opts, filterwatch.WithNotifier(notifier))
	}
	watcher, err := filterwatch.New(registry, opts...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCycle := func(ctx context.Context) {
		stats, err := watcher.RunCycle(ctx)
		metrics.CheckCyclesTotal.Inc()
		metrics.LastCycleDurationSeconds.Set(stats.Elapsed.Seconds())
		if err != nil {
			log.Errorw("check cycle failed", "err", err)
			return
		}
		if stats.Due > 0 {
			log.Infow("check cycle complete",
				"due", stats.Due,
				"filtered", stats.Filtered,
				"errors", stats.Errors,
				"elapsed", stats.Elapsed,
			)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	// Periodic checker.
	g.Go(func() error {
		log.Infow("periodic checker starting",
			"interval", cfg.Checker.CycleInterval(),
			"public", cfg.Resolvers.Public,
			"local", cfg.Resolvers.Local,
		)
		timer := time.NewTimer(0)
		defer timer.Stop()
		<-timer.C

		for {
			runCycle(ctx)
			timer.Reset(cfg.Checker.CycleInterval())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	})

	// Operator HTTP API.
	if cfg.HTTP.ListenAddr != "" {
		api := httpapi.New(registry, watcher, hist, func() {
			go runCycle(context.Background())
		}, log)

		srv := &http.Server{
			Addr:              cfg.HTTP.ListenAddr,
			Handler:           api.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			log.Infow("http api listening", "addr", cfg.HTTP.ListenAddr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		log.Infow("shutdown complete")
		return nil
	}
	return err
}

// countingNotifier instruments alert deliveries with the failure
// counter while delegating to the real client.
type countingNotifier struct {
	inner filterwatch.Notifier
}

func (n countingNotifier) Notify(ctx context.Context, recipient, message string) error {
	if err := n.inner.Notify(ctx, recipient, message); err != nil {
		metrics.NotifyFailuresTotal.Inc()
		return err
	}
	return nil
}

// runningInTTY reports whether stdout is a terminal, enabling the
// console log tee.
func runningInTTY() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
