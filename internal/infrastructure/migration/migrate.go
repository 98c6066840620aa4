// Package migration esquema de la base con golang-migrate (SQL embebido, driver pgx v5).
package migration

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

//go:embed sql/*.sql
var files embed.FS

// Migrator aplica y revierte migraciones.
type Migrator struct {
	m   *migrate.Migrate
	log zerolog.Logger
}

// New abre el migrador sobre el DSN postgres:// (se traduce al esquema pgx5://).
func New(dsn string, log zerolog.Logger) (*Migrator, error) {
	src, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("migration: fuente embebida: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, driverURL(dsn))
	if err != nil {
		return nil, fmt.Errorf("migration: inicializar: %w", err)
	}
	return &Migrator{m: m, log: log.With().Str("component", "migration").Logger()}, nil
}

func driverURL(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

// Up aplica las migraciones pendientes.
func (mg *Migrator) Up() error {
	err := mg.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info().Msg("sin migraciones pendientes")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration: up: %w", err)
	}
	v, dirty, _ := mg.m.Version()
	mg.log.Info().Uint("version", v).Bool("dirty", dirty).Msg("migraciones aplicadas")
	return nil
}

// Down revierte steps migraciones (todas si steps <= 0).
func (mg *Migrator) Down(steps int) error {
	var err error
	if steps <= 0 {
		err = mg.m.Down()
	} else {
		err = mg.m.Steps(-steps)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration: down: %w", err)
	}
	mg.log.Info().Int("steps", steps).Msg("migraciones revertidas")
	return nil
}

// Version versión actual; 0 si la base no tiene migraciones.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close libera fuente y conexión.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
