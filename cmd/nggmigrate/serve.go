package main

import (
	"fmt"

	"github.com/ALT-F4-LLC/nggmigrate/internal/output"
	"github.com/ALT-F4-LLC/nggmigrate/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the admin conversion endpoint",
	Long: `Serve GET /admin/escape-ngg?please=1 behind a bearer token
(server.admin_token). Only one conversion runs at a time per process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getCfg(cmd)
		logger := getLogger(cmd)

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if cfg.Server.AdminToken == "" {
			return cmdErr(fmt.Errorf("server.admin_token must be set to serve the admin endpoint"), output.ErrValidation)
		}

		m, closeLegacy, err := buildMigrator(cmd.Context(), cfg, getDB(cmd), logger, runOptions{})
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		defer closeLegacy()

		srv := server.New(m, server.Config{
			Addr:       cfg.Server.Addr,
			AdminToken: cfg.Server.AdminToken,
			Debug:      cfg.Log.Level == "debug",
			Logger:     logger,
		})
		if err := srv.Run(cmd.Context()); err != nil {
			return cmdErr(err, output.ErrGeneral)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address; overrides server.addr")
	rootCmd.AddCommand(serveCmd)
}
