package tests

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/eskrenkovic/migrate-go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/lib/pq"
)

const (
	postgresPort = nat.Port("5432/tcp")
	redisPort    = nat.Port("6379/tcp")

	startupTimeout = 2 * time.Minute
)

// SkipInfrastructure skips t when containers are disabled with SKIP_INFRASTRUCTURE=true or -short.
func SkipInfrastructure(t *testing.T) {
	t.Helper()

	if InfrastructureDisabled() {
		t.Skip("infrastructure tests disabled")
	}
}

// LocalTestFixture is a single throwaway container, terminated when the test ends.
type LocalTestFixture struct {
	container testcontainers.Container
	host      string
	port      nat.Port
}

func startContainer(
	ctx context.Context,
	req testcontainers.ContainerRequest,
	port nat.Port,
) (LocalTestFixture, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return LocalTestFixture{}, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return LocalTestFixture{}, err
	}

	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		_ = container.Terminate(ctx)
		return LocalTestFixture{}, err
	}

	return LocalTestFixture{container: container, host: host, port: mapped}, nil
}

func (f LocalTestFixture) Stop(ctx context.Context) error {
	return f.container.Terminate(ctx)
}

func (f LocalTestFixture) address() string {
	return fmt.Sprintf("%s:%s", f.host, f.port.Port())
}

// InfrastructureDisabled reports whether container backed tests should be skipped.
// Call it after flag.Parse when used from TestMain.
func InfrastructureDisabled() bool {
	return os.Getenv("SKIP_INFRASTRUCTURE") == "true" || testing.Short()
}

// NewPostgresFixture starts a Postgres container and returns it with its connection string.
func NewPostgresFixture(ctx context.Context) (LocalTestFixture, string, error) {
	f, err := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{string(postgresPort)},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "spellqueue",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(startupTimeout),
	}, postgresPort)
	if err != nil {
		return LocalTestFixture{}, "", fmt.Errorf("failed to start postgres: %w", err)
	}

	return f, fmt.Sprintf("postgres://postgres:postgres@%s/spellqueue?sslmode=disable", f.address()), nil
}

// NewRedisFixture starts a Redis container and returns it with its redis:// URL.
func NewRedisFixture(ctx context.Context) (LocalTestFixture, string, error) {
	f, err := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{string(redisPort)},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(startupTimeout),
	}, redisPort)
	if err != nil {
		return LocalTestFixture{}, "", fmt.Errorf("failed to start redis: %w", err)
	}

	return f, fmt.Sprintf("redis://%s/0", f.address()), nil
}

// StartPostgres starts a Postgres container for t and returns its connection string.
func StartPostgres(t *testing.T) string {
	t.Helper()
	SkipInfrastructure(t)

	f, url, err := NewPostgresFixture(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := f.Stop(context.Background()); err != nil {
			t.Logf("failed to stop postgres: %v", err)
		}
	})

	return url
}

// StartMigratedPostgres starts Postgres, applies db/migrations and returns an open pool.
func StartMigratedPostgres(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("postgres", StartPostgres(t))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := migrate.Run(context.Background(), db, MigrationsPath()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// StartRedis starts a Redis container for t and returns its redis:// URL.
func StartRedis(t *testing.T) string {
	t.Helper()
	SkipInfrastructure(t)

	f, url, err := NewRedisFixture(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := f.Stop(context.Background()); err != nil {
			t.Logf("failed to stop redis: %v", err)
		}
	})

	return url
}

// RootPath is the repository root, resolved from this file's location.
func RootPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..")
}

func MigrationsPath() string {
	return filepath.Join(RootPath(), "db", "migrations")
}
