package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/cashflow/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cashflow-cli",
		Short: "Cashflow CLI tool",
		Long:  `A command line interface for the cashflow ledger API and its database.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the cashflow API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	aggregateCmd := &cobra.Command{
		Use:   "aggregate <yyyy-MM-dd>",
		Short: "Show the daily aggregate for a date",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/aggregates/" + args[0])
		},
	}

	entriesCmd := &cobra.Command{
		Use:   "entries <yyyy-MM-dd>",
		Short: "List entries for a date",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/entries/" + args[0])
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	var databaseURL, migrationsPath string
	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL")
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "Migrations directory")

	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			if err := postgres.RunMigrations(databaseURL, migrationsPath); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		},
	}

	migrateDownCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Run: func(cmd *cobra.Command, args []string) {
			if err := postgres.RunMigrationsDown(databaseURL, migrationsPath); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		},
	}

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(aggregateCmd, entriesCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func getJSON(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	fmt.Println(prettyJSON(body))
}

// prettyJSON re-indents a JSON payload; anything undecodable passes
// through untouched.
func prettyJSON(body []byte) string {
	var pretty any
	if err := json.Unmarshal(body, &pretty); err != nil {
		return string(body)
	}

	out, _ := json.MarshalIndent(pretty, "", "  ")
	return string(out)
}
