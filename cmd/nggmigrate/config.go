package main

import (
	"fmt"
	"os"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"

	"github.com/ALT-F4-LLC/nggmigrate/internal/config"
	"github.com/ALT-F4-LLC/nggmigrate/internal/db"
	"github.com/ALT-F4-LLC/nggmigrate/internal/output"
	"github.com/ALT-F4-LLC/nggmigrate/internal/render"
	"github.com/spf13/cobra"
)

type configInfo struct {
	DBPath        string         `json:"db_path"`
	DBSizeBytes   int64          `json:"db_size_bytes"`
	SchemaVersion int            `json:"schema_version"`
	Galleries     int            `json:"legacy_galleries"`
	Pictures      int            `json:"legacy_pictures"`
	ConfigFile    string         `json:"config_file"`
	PathEnv       string         `json:"nggmigrate_path_env"`
	PathSet       bool           `json:"nggmigrate_path_set"`
	Settings      []config.Entry `json:"settings"`
}

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Display nggmigrate configuration",
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		info := configInfo{
			DBPath:     cfg.DBPath,
			ConfigFile: cfg.ConfigFile,
			PathEnv:    os.Getenv("NGGMIGRATE_PATH"),
			PathSet:    cfg.EnvVarSet,
			Settings:   cfg.Entries(),
		}

		exists, err := cfg.Exists()
		if err != nil {
			return cmdErr(fmt.Errorf("checking database: %w", err), output.ErrGeneral)
		}

		if !exists {
			w.Warn("No content database found. Run 'nggmigrate init' to create one.")
			w.Success(info, formatConfigHuman(info, true))
			return nil
		}

		conn, err := db.Open(cfg.DBPath)
		if err != nil {
			return cmdErr(fmt.Errorf("opening database: %w", err), output.ErrGeneral)
		}
		defer conn.Close()

		info.SchemaVersion, err = db.SchemaVersion(conn)
		if err != nil {
			return cmdErr(fmt.Errorf("reading schema version: %w", err), output.ErrGeneral)
		}

		info.Galleries, info.Pictures, err = db.CountLegacy(cmd.Context(), conn)
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}

		stat, err := os.Stat(cfg.DBPath)
		if err != nil {
			return cmdErr(fmt.Errorf("reading database file: %w", err), output.ErrGeneral)
		}
		info.DBSizeBytes = stat.Size()

		w.Success(info, formatConfigHuman(info, false))
		return nil
	},
}

func formatEnvValue(val string) string {
	if val == "" {
		return "(not set)"
	}
	return val
}

func formatConfigHuman(info configInfo, notFound bool) string {
	if !render.ColorsEnabled() {
		return formatConfigPlain(info, notFound)
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))

	var b strings.Builder
	b.WriteString(headerStyle.Render("nggmigrate Configuration") + "\n\n")

	if notFound {
		indicator := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("●")
		fmt.Fprintf(&b, "  %s %s %s\n", keyStyle.Render("Database path:"), indicator, valStyle.Render(info.DBPath+" (not found)"))
	} else {
		indicator := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("●")
		fmt.Fprintf(&b, "  %s %s %s\n", keyStyle.Render("Database path:"), indicator, valStyle.Render(info.DBPath))
		fmt.Fprintf(&b, "  %s  %s\n", keyStyle.Render("Database size:"), valStyle.Render(humanize.Bytes(uint64(info.DBSizeBytes))))
		fmt.Fprintf(&b, "  %s %s\n", keyStyle.Render("Schema version:"), valStyle.Render(fmt.Sprintf("%d", info.SchemaVersion)))
		fmt.Fprintf(&b, "  %s %s\n", keyStyle.Render("Legacy tables:"), valStyle.Render(fmt.Sprintf("%d galleries, %d pictures", info.Galleries, info.Pictures)))
	}

	fmt.Fprintf(&b, "  %s    %s\n", keyStyle.Render("Config file:"), valStyle.Render(formatEnvValue(info.ConfigFile)))
	fmt.Fprintf(&b, "  %s %s\n\n", keyStyle.Render("NGGMIGRATE_PATH:"), valStyle.Render(formatEnvValue(info.PathEnv)))

	for _, e := range info.Settings {
		fmt.Fprintf(&b, "  %s %s\n", keyStyle.Render(fmt.Sprintf("%-24s", e.Key)), e.Value)
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatConfigPlain(info configInfo, notFound bool) string {
	var b strings.Builder

	dbPath := info.DBPath
	if notFound {
		dbPath = fmt.Sprintf("%s (not found)", info.DBPath)
	}
	fmt.Fprintf(&b, "Database path:    %s\n", dbPath)
	if !notFound {
		fmt.Fprintf(&b, "Database size:    %s\n", humanize.Bytes(uint64(info.DBSizeBytes)))
		fmt.Fprintf(&b, "Schema version:   %d\n", info.SchemaVersion)
		fmt.Fprintf(&b, "Legacy tables:    %d galleries, %d pictures\n", info.Galleries, info.Pictures)
	}
	fmt.Fprintf(&b, "Config file:      %s\n", formatEnvValue(info.ConfigFile))
	fmt.Fprintf(&b, "NGGMIGRATE_PATH:  %s\n\n", formatEnvValue(info.PathEnv))

	for _, e := range info.Settings {
		fmt.Fprintf(&b, "%-24s %s\n", e.Key, e.Value)
	}

	return strings.TrimRight(b.String(), "\n")
}

func init() {
	rootCmd.AddCommand(configCmd)
}
