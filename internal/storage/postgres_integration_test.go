//go:build integration
// +build integration

package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/canonica-labs/capprobe/internal/config"
)

// setupPostgres starts a PostgreSQL container and returns its DSN.
func setupPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "capprobe_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	return fmt.Sprintf("host=%s port=%s user=test password=test dbname=capprobe_test sslmode=disable", host, port.Port())
}

func TestPostgresRepository_Contract(t *testing.T) {
	dsn := setupPostgres(t)

	var (
		repo HistoryRepository
		err  error
	)
	// The server may still be restarting after init.
	for i := 0; i < 30; i++ {
		repo, err = Open(context.Background(), config.HistoryConfig{Driver: config.HistoryPostgres, DSN: dsn})
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("open postgres history: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	repositoryContract(t, repo)

	// Reopening must not re-apply migrations.
	again, err := Open(context.Background(), config.HistoryConfig{Driver: config.HistoryPostgres, DSN: dsn})
	if err != nil {
		t.Fatalf("reopen postgres history: %v", err)
	}
	again.Close()
}
