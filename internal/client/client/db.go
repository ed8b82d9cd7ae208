package client

import (
	"context"
	"database/sql"
	"log"

	"github.com/fieldworks/fieldsync/internal/client/migrations"
	"github.com/fieldworks/fieldsync/internal/client/repositories/drafts"
	"github.com/fieldworks/fieldsync/internal/client/repositories/metadata"
	"github.com/pressly/goose/v3"
)

type Repositories struct {
	DB       *sql.DB
	Drafts   drafts.Repository
	Metadata metadata.Repository
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	// Set the database dialect
	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Fatal("failed to set goose dialect:", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	repos := &Repositories{
		DB:       db,
		Drafts:   drafts.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
	}
	return repos, nil
}
