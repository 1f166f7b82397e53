// Package cli implements the roomba CLI commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/borkshop/roomba/internal/stats"
)

var (
	sinkFlag     string
	dbPath       string
	databaseURL  string
	formatFlag   string
	logLevelFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "roomba",
	Short: "Battery-aware cleaning agents on a grid",
	Long: "Simulates cleaning agents that share a room: they clean the nearest dirt, " +
		"head for a charging station when their battery runs low, and die when it runs out.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&sinkFlag, "sink", "", "Statistics sink: none, json, sqlite or postgres (default: $ROOMBA_SINK or none)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Run database path for the json and sqlite sinks (default: $ROOMBA_DB or ~/.roomba/runs.db)")
	RootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string (default: $DATABASE_URL)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "Log level: debug, info, warn or error")
}

func getSinkKind() string {
	if sinkFlag != "" {
		return sinkFlag
	}
	if env := os.Getenv("ROOMBA_SINK"); env != "" {
		return env
	}
	return "none"
}

func getDBPath(kind string) string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("ROOMBA_DB"); env != "" {
		return env
	}
	name := "runs.db"
	if kind == "json" {
		name = "runs.json"
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".roomba", name)
}

func getDatabaseURL() string {
	if databaseURL != "" {
		return databaseURL
	}
	return os.Getenv("DATABASE_URL")
}

// openStore opens the configured run store.
func openStore() (stats.Store, error) {
	switch kind := getSinkKind(); kind {
	case "json":
		path := getDBPath(kind)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		return stats.NewJSONSink(path)
	case "sqlite":
		return stats.NewSQLiteSink(getDBPath(kind))
	case "postgres":
		url := getDatabaseURL()
		if url == "" {
			return nil, fmt.Errorf("postgres sink needs --database-url or $DATABASE_URL")
		}
		return stats.NewPostgresSink(url)
	default:
		return nil, fmt.Errorf("unknown sink %q", kind)
	}
}

// openSink opens the configured sink; "none" discards.
func openSink() (stats.Sink, error) {
	if getSinkKind() == "none" {
		return stats.Discard, nil
	}
	return openStore()
}

func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(logLevelFlag))); err != nil {
		exitErr("log level", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
