package app

import (
	"fmt"

	"github.com/guttosm/tickprobe/config"
	"github.com/guttosm/tickprobe/internal/storage"
)

// InitHistory connects the run history store.
//
// The schema is expected to exist already (db/migrations, applied with goose).
// The returned cleanup closes the connection pool.
func InitHistory(cfg config.Config) (storage.RunsRepository, func(), error) {
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}
	return storage.NewRunsRepository(db), func() { _ = db.Close() }, nil
}
