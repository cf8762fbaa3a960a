package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dimitrije/capsule-api/internal/database"
	"github.com/dimitrije/capsule-api/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	databaseURL string
	jsonOutput  bool

	db *database.DB
)

var rootCmd = &cobra.Command{
	Use:   "capsule-admin <command>",
	Short: "Operator tooling for the capsule API database",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		conn, err := database.New(context.Background(), databaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		db = conn
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
	SilenceUsage: true,
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(migrateCmd, dissolveCmd, countsCmd)
}

func adminLogger() logging.Logger {
	return logging.New(os.Stderr, "info", false)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
