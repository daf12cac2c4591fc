// Package main provides the labsentinel binary entry point.
// LabSentinel audits laboratory experiment images against standard
// operating procedures using a vision model and a reasoning model.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	// Register LLM providers via init()
	_ "github.com/c360studio/labsentinel/llm/providers"

	"github.com/spf13/cobra"

	"github.com/c360studio/labsentinel/audit"
	"github.com/c360studio/labsentinel/config"
	"github.com/c360studio/labsentinel/protocol"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "labsentinel"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Laboratory audit reconciliation engine",
		Long: `LabSentinel audits laboratory experiment images against standard
operating procedures (SOPs).

A vision model describes the image, a reasoning model compares the
description against the selected protocol, and a deterministic scorer
turns the comparison into a PASS / INVESTIGATE / FAIL verdict. All
inference results are cached by content hash so re-auditing the same
evidence never repeats a model call.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	setup := func(cmd *cobra.Command) (*App, error) {
		logger := newLogger(logLevel)
		slog.SetDefault(logger)

		cfg, err := loadConfig(configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return NewApp(cmd.Context(), cfg, logger)
	}

	cmd.AddCommand(auditCmd(setup))
	cmd.AddCommand(protocolsCmd(setup))
	cmd.AddCommand(cacheCmd(setup))
	cmd.AddCommand(configCmd(&configPath))
	cmd.AddCommand(versionCmd())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	cobra.OnFinalize(cancel)
	cmd.SetContext(ctx)

	return cmd
}

func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadFromFile(path)
}

type setupFunc func(cmd *cobra.Command) (*App, error)

func auditCmd(setup setupFunc) *cobra.Command {
	var (
		protocolName string
		protocolFile string
		protocolURL  string
		mimeType     string
		outputJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "audit <image>",
		Short: "Audit an experiment image against a protocol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd)
			if err != nil {
				return err
			}
			defer app.Shutdown()

			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			proto, err := resolveProtocol(cmd.Context(), app, protocolName, protocolFile, protocolURL)
			if err != nil {
				return err
			}

			outcome := app.pipeline.Audit(cmd.Context(), image, mimeType, proto.Text)

			if outputJSON {
				data, err := json.MarshalIndent(outcome, "", "  ")
				if err != nil {
					return fmt.Errorf("encode outcome: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			printOutcome(outcome, proto.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&protocolName, "protocol", "p", "", "Name of a stored protocol")
	cmd.Flags().StringVar(&protocolFile, "protocol-file", "", "Path to a protocol file")
	cmd.Flags().StringVar(&protocolURL, "protocol-url", "", "HTTPS URL of a protocol page")
	cmd.Flags().StringVar(&mimeType, "mime", "image/jpeg", "Image MIME type")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Emit the full outcome as JSON")

	return cmd
}

// resolveProtocol selects the SOP from exactly one of the three sources.
func resolveProtocol(ctx context.Context, app *App, name, file, rawURL string) (protocol.Protocol, error) {
	sources := 0
	for _, s := range []string{name, file, rawURL} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return protocol.Protocol{}, fmt.Errorf("specify exactly one of --protocol, --protocol-file, --protocol-url")
	}

	switch {
	case name != "":
		proto, ok := app.protocols.Get(name)
		if !ok {
			return protocol.Protocol{}, fmt.Errorf("unknown protocol %q (see: %s protocols list)", name, appName)
		}
		return proto, nil
	case file != "":
		text, err := os.ReadFile(file)
		if err != nil {
			return protocol.Protocol{}, fmt.Errorf("read protocol file: %w", err)
		}
		return protocol.Protocol{Name: file, Text: string(text), Source: file}, nil
	default:
		fetcher := protocol.NewFetcher(app.cfg.Inference.Timeout)
		return fetcher.Fetch(ctx, rawURL)
	}
}

func printOutcome(outcome *audit.Outcome, protocolName string) {
	fmt.Printf("Protocol: %s\n", protocolName)
	fmt.Printf("Request:  %s\n", outcome.RequestID)

	if outcome.State == audit.StateAbortedLowQuality {
		fmt.Println("\nAudit aborted: declared image quality too low to assess.")
		fmt.Println("Retake the image and re-run the audit.")
		return
	}

	rec := outcome.Record
	fmt.Printf("\nStatus: %s", rec.Status)
	if rec.Score != nil {
		fmt.Printf("   Score: %d/100", *rec.Score)
	}
	fmt.Println()

	if outcome.Mismatch {
		fmt.Printf("\nWARNING: image appears to show %s but the protocol covers %s\n",
			outcome.DetectedType, outcome.ExpectedType)
	}

	if rec.Summary != "" {
		fmt.Printf("\n%s\n", rec.Summary)
	}

	if len(rec.Checklist) > 0 {
		fmt.Println("\nSOP compliance:")
		for _, item := range rec.Checklist {
			fmt.Printf("  [%s] %s\n", item.Status, item.Criterion)
			if item.Notes != "" {
				fmt.Printf("      %s\n", item.Notes)
			}
		}
	}

	if len(rec.Findings) > 0 {
		fmt.Println("\nFindings:")
		for _, f := range rec.Findings {
			fmt.Printf("  %s [%s] %s\n", f.ID, f.Severity, f.Category)
			fmt.Printf("      %s\n", f.Observation)
			if f.Recommendation != "" {
				fmt.Printf("      Recommendation: %s\n", f.Recommendation)
			}
		}
	}

	if rec.RiskAssessment != "" {
		fmt.Printf("\nRisk assessment: %s\n", rec.RiskAssessment)
	}
	if len(rec.RecommendedActions) > 0 {
		fmt.Println("\nRecommended actions:")
		for _, action := range rec.RecommendedActions {
			fmt.Printf("  - %s\n", action)
		}
	}
}

func protocolsCmd(setup setupFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protocols",
		Short: "Manage standard operating procedures",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available protocols",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd)
			if err != nil {
				return err
			}
			defer app.Shutdown()

			for _, proto := range app.protocols.List() {
				fmt.Printf("%-40s %s\n", proto.Name, proto.Source)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Print a protocol's full text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd)
			if err != nil {
				return err
			}
			defer app.Shutdown()

			proto, ok := app.protocols.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown protocol %q", args[0])
			}
			fmt.Println(proto.Text)
			return nil
		},
	})

	return cmd
}

func cacheCmd(setup setupFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the inference cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cache entry count",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd)
			if err != nil {
				return err
			}
			defer app.Shutdown()

			n, err := app.CacheLen(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Backend: %s\nEntries: %d\n", app.cfg.Cache.Backend, n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop all cached inference results",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd)
			if err != nil {
				return err
			}
			defer app.Shutdown()

			if err := app.CacheClear(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Cache cleared.")
			return nil
		},
	})

	return cmd
}

func configCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init <path>",
		Short: "Write a default configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if err := cfg.SaveToFile(args[0]); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	})

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}
