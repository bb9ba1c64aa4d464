package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator aplica el esquema embebido con golang-migrate.
type Migrator struct {
	migrate *migrate.Migrate
	db      *sql.DB
	log     zerolog.Logger
}

// NewMigrator abre una conexión database/sql (driver pgx) y prepara las migraciones embebidas.
func NewMigrator(databaseURL string, log zerolog.Logger) (*Migrator, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("abrir BD para migraciones: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping BD para migraciones: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{
		MigrationsTable:  "schema_migrations",
		StatementTimeout: 10 * time.Minute,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("driver postgres de migrate: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("fuente embebida de migraciones: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("instancia de migrate: %w", err)
	}
	return &Migrator{migrate: m, db: db, log: log}, nil
}

// Up aplica todas las migraciones pendientes. Una BD en estado dirty es un error.
func (m *Migrator) Up() error {
	version, dirty, err := m.migrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("versión actual: %w", err)
	}
	if dirty {
		return fmt.Errorf("la BD está en estado dirty en la versión %d", version)
	}
	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.log.Info().Uint("version", version).Msg("esquema al día")
			return nil
		}
		return fmt.Errorf("aplicar migraciones: %w", err)
	}
	if v, _, err := m.migrate.Version(); err == nil {
		m.log.Info().Uint("version", v).Msg("migraciones aplicadas")
	}
	return nil
}

// Close libera la fuente y la conexión.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.migrate.Close()
	if srcErr != nil || dbErr != nil {
		return fmt.Errorf("cerrar migrator: source=%v db=%v", srcErr, dbErr)
	}
	return nil
}
