//go:build integration
// +build integration

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	goose "github.com/pressly/goose/v3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/guttosm/tickprobe/internal/domain/models"
)

// startPostgres spins up a Postgres container and returns a DSN and terminate func.
func startPostgres(t *testing.T) (dsn string, terminate func()) {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "tickprobe",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=tickprobe sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/tickprobe?sslmode=disable", host, port.Port())
	return dsn, func() { _ = container.Terminate(context.Background()) }
}

func openMigrated(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("dialect: %v", err)
	}
	if err := goose.Up(db, filepath.Join("..", "..", "db", "migrations")); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	return db
}

func TestRunsRepository_Integration_SaveAndList(t *testing.T) {
	dsn, terminate := startPostgres(t)
	defer terminate()
	db := openMigrated(t, dsn)
	defer func() { _ = db.Close() }()

	repo := NewRunsRepository(db)
	ctx := context.Background()

	older := sampleReport()
	if err := repo.SaveReport(ctx, older); err != nil {
		t.Fatalf("save older: %v", err)
	}

	newer := sampleReport()
	newer.RunID = "9b1c2d3e-4f50-4a6b-8c7d-0e1f2a3b4c5d"
	newer.StartedAt = older.StartedAt.Add(time.Hour)
	newer.FinishedAt = newer.StartedAt.Add(time.Second)
	if err := repo.SaveReport(ctx, newer); err != nil {
		t.Fatalf("save newer: %v", err)
	}

	runs, err := repo.RecentRuns(ctx, "AAPL", 5)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != newer.RunID {
		t.Fatalf("expected newest first, got %+v", runs)
	}
	if runs[1].Total != 2 || runs[1].Succeeded != 1 || runs[1].Failed != 1 {
		t.Fatalf("unexpected counts %+v", runs[1])
	}

	var ticks, anomalies int
	var spikePrice string
	if err := db.QueryRow(`SELECT count(*) FROM loadtest_ticks WHERE run_id = $1`, older.RunID).Scan(&ticks); err != nil {
		t.Fatalf("count ticks: %v", err)
	}
	if err := db.QueryRow(`SELECT count(*), max(price)::text FROM loadtest_ticks WHERE run_id = $1 AND anomaly`, older.RunID).Scan(&anomalies, &spikePrice); err != nil {
		t.Fatalf("anomaly tick: %v", err)
	}
	if ticks != 2 || anomalies != 1 || spikePrice != "180.36" {
		t.Fatalf("ticks=%d anomalies=%d spike=%s", ticks, anomalies, spikePrice)
	}
}

func TestRunsRepository_Integration_DuplicateRunRollsBack(t *testing.T) {
	dsn, terminate := startPostgres(t)
	defer terminate()
	db := openMigrated(t, dsn)
	defer func() { _ = db.Close() }()

	repo := NewRunsRepository(db)
	rep := sampleReport()
	if err := repo.SaveReport(context.Background(), rep); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := repo.SaveReport(context.Background(), rep); err == nil {
		t.Fatalf("expected duplicate run id to fail")
	}

	var n int
	if err := db.QueryRow(`SELECT count(*) FROM loadtest_ticks`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != len(rep.Outcomes) {
		t.Fatalf("failed save must leave no extra ticks, got %d", n)
	}
}
