// Package main provides the conceptlib binary entry point.
// Conceptlib loads a Master Concept Library from YAML sources and offers
// validation, search, export and a NATS-backed tool execution service
// over it.
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

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/c360studio/conceptlib/adapter"
	"github.com/c360studio/conceptlib/concept"
	"github.com/c360studio/conceptlib/config"
	"github.com/c360studio/conceptlib/contract"
	"github.com/c360studio/conceptlib/ontology"
	"github.com/c360studio/conceptlib/server"
	"github.com/c360studio/conceptlib/tools"
	"github.com/c360studio/conceptlib/validator"
)

const (
	Version = "1.0.0"
	appName = "conceptlib"
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
		Short: "Master Concept Library tooling",
		Long: `Conceptlib manages an ontology of entity, connection, property and
modifier concepts, validates entity and relationship instances against
it, and serves ontology-constrained tool execution over NATS.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(logLevel)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		statsCmd(&configPath),
		searchCmd(&configPath),
		exportCmd(&configPath),
		templateCmd(&configPath),
		validateCmd(&configPath),
		serveCmd(&configPath),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

func configureLogging(logLevel string) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadService builds the ontology service from configuration.
func loadService(configPath string) (*config.Config, *ontology.Service, error) {
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	svcCfg := ontology.ServiceConfig{
		Dir: cfg.Ontology.Dir,
		Sources: ontology.Sources{
			Entities:    cfg.Ontology.Entities,
			Connections: cfg.Ontology.Connections,
			Properties:  cfg.Ontology.Properties,
			Modifiers:   cfg.Ontology.Modifiers,
		},
	}
	if svcCfg.Dir != "" {
		svcCfg.Sources = ontology.Sources{}
	}

	svc, err := ontology.NewService(svcCfg, slog.Default())
	if err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}

func statsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print concept registry statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := loadService(*configPath)
			if err != nil {
				return err
			}
			stats := svc.Statistics()
			fmt.Printf("Entities:          %d\n", stats.Entities)
			fmt.Printf("Connections:       %d\n", stats.Connections)
			fmt.Printf("Properties:        %d\n", stats.Properties)
			fmt.Printf("Modifiers:         %d\n", stats.Modifiers)
			fmt.Printf("Subtype edges:     %d\n", stats.SubtypeEdges)
			fmt.Printf("Theory references: %d\n", stats.TheoryReferences)
			fmt.Printf("Total concepts:    %d\n", stats.Total())
			return nil
		},
	}
}

func searchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Find concepts by indigenous term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := loadService(*configPath)
			if err != nil {
				return err
			}
			matches := svc.SearchByIndigenousTerm(args[0])
			if len(matches) == 0 {
				fmt.Printf("No concepts match %q\n", args[0])
				return nil
			}
			for _, def := range matches {
				fmt.Printf("%-12s %s\n", def.ConceptKind(), def.ConceptName())
			}
			return nil
		},
	}
}

func exportCmd(configPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full registry as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := loadService(*configPath)
			if err != nil {
				return err
			}
			if err := svc.ExportRegistry(out); err != nil {
				return err
			}
			fmt.Printf("Registry exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "registry.json", "Output file path")
	return cmd
}

func templateCmd(configPath *string) *cobra.Command {
	var relationship bool
	cmd := &cobra.Command{
		Use:   "template <type>",
		Short: "Print an authoring template for an entity or relationship type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := loadService(*configPath)
			if err != nil {
				return err
			}
			v := validator.New(svc)

			var tmpl any
			if relationship {
				tmpl, err = v.GetRelationshipTemplate(args[0])
			} else {
				tmpl, err = v.GetEntityTemplate(args[0])
			}
			if err != nil {
				return err
			}
			return printJSON(tmpl)
		},
	}
	cmd.Flags().BoolVarP(&relationship, "relationship", "r", false, "Build a relationship template")
	return cmd
}

func validateCmd(configPath *string) *cobra.Command {
	var relationship bool
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate entity or relationship instances from a JSON file",
		Long: `Validate reads a JSON file holding one instance or a list of
instances and checks each against the concept library. Exit status is
non-zero when any instance has validation errors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := loadService(*configPath)
			if err != nil {
				return err
			}
			v := validator.New(svc)

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			failed := 0
			if relationship {
				rels, err := decodeOneOrMany[concept.Relationship](data)
				if err != nil {
					return err
				}
				for i := range rels {
					failed += report(fmt.Sprintf("relationship[%d] %s", i, rels[i].RelationshipType),
						v.ValidateRelationship(&rels[i], nil, nil))
				}
			} else {
				entities, err := decodeOneOrMany[concept.Entity](data)
				if err != nil {
					return err
				}
				for i := range entities {
					failed += report(fmt.Sprintf("entity[%d] %s", i, entities[i].EntityType),
						v.ValidateEntity(&entities[i]))
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d instance(s) failed validation", failed)
			}
			fmt.Println("All instances valid")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&relationship, "relationship", "r", false, "Validate relationship instances")
	return cmd
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tool execution service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := loadService(*configPath)
			if err != nil {
				return err
			}
			if cfg.NATS.URL == "" {
				return fmt.Errorf("nats.url is required for serve")
			}

			conn, err := nats.Connect(cfg.NATS.URL, nats.Name(appName))
			if err != nil {
				return fmt.Errorf("connect to NATS: %w", err)
			}
			defer conn.Close()

			component, err := server.NewComponent(server.Config{
				SubjectPrefix: cfg.NATS.SubjectPrefix,
				QueueGroup:    appName + "-tools",
			}, conn, slog.Default())
			if err != nil {
				return err
			}

			// Register built-in ontology tools, filtered by allowlist.
			contracts := contract.NewValidator(cfg.Contracts.Dir, slog.Default())
			v := validator.New(svc)
			for name, logic := range tools.Builtin(svc, v) {
				if !cfg.ToolAllowed(name) {
					continue
				}
				a := adapter.New(name, logic, contracts,
					adapter.WithOntology(v),
					adapter.WithTimeout(cfg.Tools.Timeout))
				if err := component.Register(a); err != nil {
					return err
				}
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := component.Start(ctx); err != nil {
				return err
			}

			if cfg.Ontology.Watch && cfg.Ontology.Dir != "" {
				watcher, err := ontology.NewWatcher(svc, cfg.Ontology.Dir, cfg.Ontology.DebounceDelay, slog.Default())
				if err != nil {
					return err
				}
				go func() {
					if err := watcher.Start(ctx); err != nil && ctx.Err() == nil {
						slog.Error("Ontology watcher stopped", "error", err)
					}
				}()
			}

			slog.Info("Conceptlib ready", "version", Version)
			<-ctx.Done()
			return component.Stop()
		},
	}
}

func report(label string, errs []string) int {
	if len(errs) == 0 {
		fmt.Printf("OK   %s\n", label)
		return 0
	}
	fmt.Printf("FAIL %s\n", label)
	for _, e := range errs {
		fmt.Printf("     - %s\n", e)
	}
	return 1
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// decodeOneOrMany accepts either a single JSON object or a JSON array.
func decodeOneOrMany[T any](data []byte) ([]T, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var many []T
		if err := json.Unmarshal(data, &many); err != nil {
			return nil, err
		}
		return many, nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}
