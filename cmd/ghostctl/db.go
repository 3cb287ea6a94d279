package main

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/ghostprotocol/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

func openDB(ctx context.Context) (*pgxpool.Pool, error) {
	url := config.DatabaseURL()
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}
