// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package main is the filterwatch service binary: a domain-filtering
// detection engine with a periodic checker, an operator HTTP API, and
// registry management subcommands.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sepehrz/filterwatch/internal/config"
	"github.com/sepehrz/filterwatch/src/filterwatch"
)

var cfgPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "filterwatch",
		Short:         "Detect national-level DNS filtering of monitored domains",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath, "config file path")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(cycleCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(domainsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the layered configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgPath)
}

// openRegistry builds the registry from the store section.
func openRegistry(cfg *config.Config) *filterwatch.Registry {
	return filterwatch.NewRegistry(cfg.Store.Path,
		filterwatch.WithLockTimeout(cfg.Store.LockTimeout()))
}

// watcherOptions maps the config onto engine options. Callers append
// their own (logger, notifier, recorder) before constructing.
func watcherOptions(cfg *config.Config) []filterwatch.Option {
	return []filterwatch.Option{
		filterwatch.WithResolvers(cfg.Resolvers.Public, cfg.Resolvers.Local),
		filterwatch.WithTimeout(cfg.Resolvers.Timeout()),
		filterwatch.WithConcurrency(cfg.Checker.Concurrency),
		filterwatch.WithDNSWorkers(cfg.Checker.DNSWorkers),
		filterwatch.WithCycleInterval(cfg.Checker.CycleInterval()),
	}
}
