// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MindSentry Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/mindsentry/identity/internal/store"
)

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show database migration status",
		Long:  `Show the current migration version of the PostgreSQL database.`,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	databaseURL, err := migrateDatabaseURL()
	if err != nil {
		return err
	}

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // read-only status check

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}

	if version == 0 {
		cmd.Println("No migrations applied")
		return nil
	}
	cmd.Printf("Migration version: %d\n", version)
	if dirty {
		cmd.Println("WARNING: database is in a dirty state; the last migration did not complete")
	}
	return nil
}
