package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Mayorista-api/internal/infrastructure/migration"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones de esquema (golang-migrate)",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Aplica las migraciones pendientes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(mg *migration.Migrator) error { return mg.Up() })
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revierte migraciones (todas con --steps 0)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(mg *migration.Migrator) error { return mg.Down(steps) })
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "cantidad de migraciones a revertir")

	version := &cobra.Command{
		Use:   "version",
		Short: "Muestra la versión aplicada",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(mg *migration.Migrator) error {
				v, dirty, err := mg.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "versión %d (dirty=%t)\n", v, dirty)
				return nil
			})
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func withMigrator(fn func(mg *migration.Migrator) error) error {
	mg, err := migration.New(cfg.DB.ConnectionString(), log)
	if err != nil {
		return err
	}
	defer mg.Close()
	return fn(mg)
}
