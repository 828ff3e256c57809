// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/sepehrz/filterwatch/internal/config"
	"github.com/sepehrz/filterwatch/src/filterwatch"
)

const timePrecision = 10 * time.Millisecond

func cycleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cycle",
		Short: "Run a single check cycle over all due domains and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			watcher, err := filterwatch.New(openRegistry(cfg), watcherOptions(cfg)...)
			if err != nil {
				return err
			}
			defer watcher.Close()

			stats, err := watcher.RunCycle(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("checked %d domain(s) in %s: %d filtered, %d error(s)\n",
				stats.Due, stats.Elapsed.Round(timePrecision), stats.Filtered, stats.Errors)
			return nil
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <domain> [domain ...]",
		Short: "Probe domains against both resolvers without touching the registry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			for _, arg := range args {
				name, err := filterwatch.NormalizeDomain(arg)
				if err != nil {
					return fmt.Errorf("%s: %w", arg, err)
				}
				verdict, details := checkOnce(cmd.Context(), cfg, name)
				fmt.Printf("%s: %s\n", name, strings.ToUpper(string(verdict)))
				fmt.Printf("  public (%s): %s\n", cfg.Resolvers.Public, details.Public.Summary())
				fmt.Printf("  local  (%s): %s\n", cfg.Resolvers.Local, details.Local.Summary())
			}
			return nil
		},
	}
}

func checkOnce(ctx context.Context, cfg *config.Config, name string) (filterwatch.Verdict, filterwatch.CheckDetails) {
	var (
		wg            sync.WaitGroup
		public, local filterwatch.ProbeResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		public = filterwatch.Probe(ctx, name, cfg.Resolvers.Public, cfg.Resolvers.Timeout())
	}()
	go func() {
		defer wg.Done()
		local = filterwatch.Probe(ctx, name, cfg.Resolvers.Local, cfg.Resolvers.Timeout())
	}()
	wg.Wait()
	return filterwatch.Classify(public, local)
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report reachability and latency of both resolvers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			watcher, err := filterwatch.New(openRegistry(cfg), watcherOptions(cfg)...)
			if err != nil {
				return err
			}
			defer watcher.Close()

			for _, st := range watcher.ResolverStatus(cmd.Context()) {
				if st.Online {
					fmt.Printf("%-7s %-15s online  %dms\n", st.Role, st.Resolver, st.LatencyMs)
				} else {
					fmt.Printf("%-7s %-15s OFFLINE %v\n", st.Role, st.Resolver, st.Error)
				}
			}
			return nil
		},
	}
}
