package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/quintessa/grantwatch/internal/adapters"
	"github.com/quintessa/grantwatch/internal/collect"
	"github.com/quintessa/grantwatch/internal/config"
	"github.com/quintessa/grantwatch/internal/errbus"
	"github.com/quintessa/grantwatch/internal/extract"
	"github.com/quintessa/grantwatch/internal/llm"
	"github.com/quintessa/grantwatch/internal/provider"
	"github.com/quintessa/grantwatch/internal/server"
	"github.com/quintessa/grantwatch/internal/sheet"
	"github.com/quintessa/grantwatch/internal/store"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "grantwatch",
	Short:   "Collect and track grant opportunities",
	Long:    "Grantwatch collects editais, chamadas and prêmios from configured sources and registered links into a reviewable opportunity table.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(linksCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("grantwatch", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/grantwatch/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure adapters, the store backend, and the extraction model.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store and adapter status",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, bus, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		_, items, err := st.ReadItems()
		if err != nil {
			return err
		}
		links, err := st.ReadLinks()
		if err != nil {
			return err
		}

		active := 0
		for _, l := range links {
			if l.Ativo {
				active++
			}
		}

		reg := newRegistry(bus)
		providers := reg.Providers()

		fmt.Printf("Store: %s (%s)\n\n", cfg.StorePath(), cfg.Store.Backend)
		fmt.Println("Opportunities:")
		fmt.Printf("  Stored: %d\n", len(items))
		fmt.Println("\nRegistered links:")
		fmt.Printf("  Total: %d\n", len(links))
		fmt.Printf("  Active: %d\n", active)
		fmt.Println("\nAdapters:")
		fmt.Printf("  Configured: %d\n", len(cfg.Adapters))
		fmt.Printf("  Usable: %d\n", len(providers))
		fmt.Printf("\nDeadline window: %d days\n", st.MinDays())

		if entries := bus.Snapshot(); len(entries) > 0 {
			fmt.Println("\nDiagnostics:")
			for _, e := range entries {
				fmt.Printf("  [%s] %s\n", e.Context, e.Message)
			}
		}
		return nil
	},
}

// --- collect command ---

var (
	collectMinDays int
	collectGroups  []string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect opportunities from configured adapters",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, bus, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		reg := newRegistry(bus)
		collector := collect.NewCollector(reg, st, bus, cfg.Collect.Workers)

		minDays := collectMinDays
		if minDays <= 0 {
			minDays = cfg.Collect.MinDays
		}

		result, err := collector.Run(context.Background(), minDays, collectGroups)
		if err != nil {
			return err
		}

		fmt.Println("\nCollection complete:")
		fmt.Printf("  Total found: %d\n", result.TotalFound)
		fmt.Printf("  New items: %d\n", result.New)
		fmt.Printf("  Duplicates skipped: %d\n", result.Duplicates)
		fmt.Printf("  Filtered by window/value: %d\n", result.Filtered)

		if len(result.BySource) > 0 {
			fmt.Println("\nItems by source:")
			type kv struct {
				key string
				val int
			}
			var sorted []kv
			for k, v := range result.BySource {
				sorted = append(sorted, kv{k, v})
			}
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })
			for _, s := range sorted {
				fmt.Printf("  %s: %d\n", s.key, s.val)
			}
		}

		printErrors(result.Errors)
		return nil
	},
}

func init() {
	collectCmd.Flags().IntVar(&collectMinDays, "min-days", 0, "Override the deadline window (days)")
	collectCmd.Flags().StringSliceVar(&collectGroups, "group", nil, "Restrict to specific groups (repeatable)")
}

// --- extract command ---

var (
	extractMinDays int
	extractLinkUID string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract opportunities from registered links via the AI model",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, bus, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		model := newModel()
		if model == nil {
			return fmt.Errorf("no extraction model available; check %s or the Ollama server", cfg.Extraction.APIKeyEnv)
		}
		ext := extract.NewExtractor(st, bus, model, extract.NewFetcher(0), cfg.Extraction.MaxTokens)
		ctx := context.Background()

		if extractLinkUID != "" {
			link, err := st.FindLink(extractLinkUID)
			if err != nil {
				return err
			}
			if link == nil {
				return fmt.Errorf("link %s not found", extractLinkUID)
			}
			added, err := ext.ExtractFromLink(ctx, link, extractMinDays)
			if err != nil {
				return err
			}
			fmt.Printf("Extracted %d new item(s) from %s\n", added, link.URL)
			return nil
		}

		result, err := ext.ExtractFromLinks(ctx, extractMinDays, func(lr extract.LinkResult) {
			status := "ok"
			if lr.Err != nil {
				status = "erro"
			}
			fmt.Printf("  %-6s %s (%d items)\n", status, lr.Link.URL, lr.Items)
		})
		if err != nil {
			return err
		}

		fmt.Println("\nExtraction complete:")
		fmt.Printf("  Links processed: %d\n", result.Processed)
		fmt.Printf("  New items: %d\n", result.Items)
		printErrors(result.Errors)
		return nil
	},
}

func init() {
	extractCmd.Flags().IntVar(&extractMinDays, "min-days", 0, "Override the deadline window (days)")
	extractCmd.Flags().StringVar(&extractLinkUID, "link", "", "Extract a single registered link by uid")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, bus, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		reg := newRegistry(bus)
		collector := collect.NewCollector(reg, st, bus, cfg.Collect.Workers)
		ext := extract.NewExtractor(st, bus, newModel(), extract.NewFetcher(0), cfg.Extraction.MaxTokens)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(st, bus, reg, collector, ext, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on")
}

// --- shared wiring ---

func openStore() (*store.Store, *errbus.Bus, error) {
	path := cfg.StorePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	var (
		api sheet.API
		err error
	)
	switch cfg.Store.Backend {
	case "xlsx":
		api, err = sheet.OpenWorkbook(path)
	case "sqlite", "":
		api, err = sheet.OpenSQLite(path)
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, nil, err
	}

	bus := errbus.New()
	st, err := store.Open(api, bus)
	if err != nil {
		return nil, nil, err
	}
	return st, bus, nil
}

func newRegistry(bus *errbus.Bus) *provider.Registry {
	reg := provider.NewRegistry(bus)
	adapters.Register(reg)
	reg.Load(cfg.Adapters)
	return reg
}

func newModel() llm.Provider {
	e := cfg.Extraction
	return llm.CreateProvider(llm.Options{
		Provider:    e.Provider,
		Model:       e.Model,
		BaseURL:     e.BaseURL,
		APIKeyEnv:   e.APIKeyEnv,
		OllamaURL:   e.OllamaURL,
		OllamaModel: e.OllamaModel,
		Temperature: e.Temperature,
	})
}

func printErrors(entries []errbus.Entry) {
	if len(entries) == 0 {
		return
	}
	fmt.Println("\nDiagnostics:")
	for _, e := range entries {
		fmt.Printf("  [%s] %s (%s)\n", e.Context, e.Message, e.Timestamp)
	}
}
