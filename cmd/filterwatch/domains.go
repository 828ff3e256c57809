// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sepehrz/filterwatch/internal/report"
	"github.com/sepehrz/filterwatch/src/filterwatch"
)

func domainsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domains",
		Short: "Manage the monitored-domain registry",
	}
	cmd.AddCommand(domainsListCmd())
	cmd.AddCommand(domainsAddCmd())
	cmd.AddCommand(domainsRemoveCmd())
	cmd.AddCommand(domainsUpdateCmd())
	cmd.AddCommand(domainsImportCmd())
	cmd.AddCommand(domainsExportCmd())
	return cmd
}

func domainsListCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List monitored domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry := openRegistry(cfg)

			var entries []filterwatch.DomainEntry
			if category != "" {
				cat, err := filterwatch.ParseCategory(category)
				if err != nil {
					return err
				}
				entries, err = registry.ListByCategory(cat)
				if err != nil {
					return err
				}
			} else {
				entries, err = registry.ListAll()
				if err != nil {
					return err
				}
			}

			if len(entries) == 0 {
				fmt.Println("no domains registered")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%-14s %-30s every %3dm  last: %s\n",
					e.Category, e.Name, e.CheckIntervalMinutes, lastStatus(e))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "restrict to one category (management, subscription, countries/<CODE>)")
	return cmd
}

func lastStatus(e filterwatch.DomainEntry) string {
	if e.LastStatus == nil || e.LastCheckedAt == nil {
		return "never checked"
	}
	return fmt.Sprintf("%s at %s", *e.LastStatus, e.LastCheckedAt.Format("2006-01-02 15:04"))
}

func domainsAddCmd() *cobra.Command {
	var (
		label    string
		purpose  string
		interval int
		notes    string
		noNotify bool
	)

	cmd := &cobra.Command{
		Use:   "add <category> <domain>",
		Short: "Register a domain for monitoring",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cat, err := filterwatch.ParseCategory(args[0])
			if err != nil {
				return err
			}

			entry := filterwatch.NewDomainEntry(args[1])
			if label != "" {
				entry.Label = label
			}
			if purpose != "" {
				entry.Purpose = purpose
			}
			if cmd.Flags().Changed("interval") {
				entry.CheckIntervalMinutes = interval
			}
			entry.Notes = notes
			entry.NotifyAdmins = !noNotify

			added, err := openRegistry(cfg).Add(cat, entry)
			if err != nil {
				return err
			}
			fmt.Printf("added %s to %s (every %dm)\n", added.Name, cat, added.CheckIntervalMinutes)
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "display name (defaults to the domain)")
	cmd.Flags().StringVar(&purpose, "purpose", "", "classification tag (defaults to \"other\")")
	cmd.Flags().IntVar(&interval, "interval", filterwatch.DefaultCheckIntervalMinutes, "check interval in minutes")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form operator notes")
	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "suppress admin notifications for this domain")
	return cmd
}

func domainsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <domain>",
		Short: "Remove a domain from every category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			removed, err := openRegistry(cfg).Remove(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("removed %d occurrence(s) of %s\n", removed, args[0])
			return nil
		},
	}
}

func domainsUpdateCmd() *cobra.Command {
	var (
		label    string
		purpose  string
		interval int
		notes    string
		notify   bool
	)

	cmd := &cobra.Command{
		Use:   "update <domain>",
		Short: "Update the mutable fields of a domain entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var fields filterwatch.UpdateFields
			if cmd.Flags().Changed("label") {
				fields.Label = &label
			}
			if cmd.Flags().Changed("purpose") {
				fields.Purpose = &purpose
			}
			if cmd.Flags().Changed("interval") {
				fields.CheckIntervalMinutes = &interval
			}
			if cmd.Flags().Changed("notes") {
				fields.Notes = &notes
			}
			if cmd.Flags().Changed("notify") {
				fields.NotifyAdmins = &notify
			}

			updated, err := openRegistry(cfg).Update(args[0], fields)
			if err != nil {
				return err
			}
			fmt.Printf("updated %s in %s\n", updated.Name, updated.Category)
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "display name")
	cmd.Flags().StringVar(&purpose, "purpose", "", "classification tag")
	cmd.Flags().IntVar(&interval, "interval", 0, "check interval in minutes")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form operator notes")
	cmd.Flags().BoolVar(&notify, "notify", true, "notify admins on filtered verdicts")
	return cmd
}

// importDocument is the YAML shape accepted by domains import: category
// paths mapping to entry lists.
type importDocument struct {
	Domains map[string][]importEntry `yaml:"domains"`
}

type importEntry struct {
	Name            string `yaml:"name"`
	Label           string `yaml:"label"`
	Purpose         string `yaml:"purpose"`
	IntervalMinutes int    `yaml:"check_interval_minutes"`
	Notes           string `yaml:"notes"`
	NoNotify        bool   `yaml:"no_notify"`
}

func domainsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Bulk-register domains from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var doc importDocument
			if err := yaml.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			registry := openRegistry(cfg)
			added, skipped := 0, 0
			for path, entries := range doc.Domains {
				cat, err := filterwatch.ParseCategory(path)
				if err != nil {
					return err
				}
				for _, ie := range entries {
					entry := filterwatch.NewDomainEntry(ie.Name)
					if ie.Label != "" {
						entry.Label = ie.Label
					}
					if ie.Purpose != "" {
						entry.Purpose = ie.Purpose
					}
					if ie.IntervalMinutes > 0 {
						entry.CheckIntervalMinutes = ie.IntervalMinutes
					}
					entry.Notes = ie.Notes
					entry.NotifyAdmins = !ie.NoNotify

					if _, err := registry.Add(cat, entry); err != nil {
						if errors.Is(err, filterwatch.ErrDuplicateDomain) {
							fmt.Fprintf(os.Stderr, "skipping %s: already in %s\n", ie.Name, cat)
							skipped++
							continue
						}
						return fmt.Errorf("%s: %w", ie.Name, err)
					}
					added++
				}
			}
			fmt.Printf("imported %d domain(s), skipped %d duplicate(s)\n", added, skipped)
			return nil
		},
	}
}

func domainsExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the registry to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			entries, err := openRegistry(cfg).ListAll()
			if err != nil {
				return err
			}
			if err := report.Write(out, entries); err != nil {
				return err
			}
			fmt.Printf("wrote %d domain(s) to %s\n", len(entries), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "domains.xlsx", "output workbook path")
	return cmd
}
