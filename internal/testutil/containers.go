// Package testutil starts the containers finrag's integration and e2e tests run against.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cloo-solutions/finrag/internal/database"
	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "pgvector/pgvector:0.8.1-pg18"
	postgresCreds = "finrag"

	redisImage = "redis:7-alpine"

	rustFSImage = "rustfs/rustfs:latest"
	// RustFSAccessKey and RustFSSecretKey are the credentials of the RustFS container.
	RustFSAccessKey = "rustfsadmin"
	RustFSSecretKey = "rustfsadmin"
)

// endpoint is a started container and its mapped address.
type endpoint struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// Terminate stops and removes the container.
func (e *endpoint) Terminate(ctx context.Context) error {
	return testcontainers.TerminateContainer(e.Container)
}

func start(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest, port string) endpoint {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start %s: %v", req.Image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get host of %s: %v", req.Image, err)
	}

	mapped, err := container.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("failed to get port %s of %s: %v", port, req.Image, err)
	}

	return endpoint{Container: container, Host: host, Port: mapped.Port()}
}

// PostgresContainer is a pgvector-enabled PostgreSQL.
type PostgresContainer struct {
	endpoint
}

// NewPostgresContainer starts PostgreSQL with the vector extension available.
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	ep := start(ctx, t, testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     postgresCreds,
			"POSTGRES_PASSWORD": postgresCreds,
			"POSTGRES_DB":       postgresCreds,
		},
		// the server restarts once after initdb
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithStartupTimeout(60 * time.Second),
	}, "5432")

	return &PostgresContainer{endpoint: ep}
}

// ConnectionString returns a DSN usable by pgx and golang-migrate.
func (pc *PostgresContainer) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresCreds, postgresCreds, pc.Host, pc.Port, postgresCreds)
}

// RustFSContainer is an S3-compatible object store.
type RustFSContainer struct {
	endpoint
}

// NewRustFSContainer starts RustFS with RustFSAccessKey/RustFSSecretKey.
func NewRustFSContainer(ctx context.Context, t *testing.T) *RustFSContainer {
	ep := start(ctx, t, testcontainers.ContainerRequest{
		Image:        rustFSImage,
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"RUSTFS_ACCESS_KEY": RustFSAccessKey,
			"RUSTFS_SECRET_KEY": RustFSSecretKey,
		},
		WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(30 * time.Second),
	}, "9000")

	return &RustFSContainer{endpoint: ep}
}

// Endpoint returns the S3 endpoint URL.
func (rc *RustFSContainer) Endpoint() string {
	return fmt.Sprintf("http://%s:%s", rc.Host, rc.Port)
}

// RedisContainer backs the embedding cache.
type RedisContainer struct {
	endpoint
}

// NewRedisContainer starts a Redis without persistence or auth.
func NewRedisContainer(ctx context.Context, t *testing.T) *RedisContainer {
	ep := start(ctx, t, testcontainers.ContainerRequest{
		Image:        redisImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}, "6379")

	return &RedisContainer{endpoint: ep}
}

// URL returns a redis:// URL for database 0.
func (rc *RedisContainer) URL() string {
	return fmt.Sprintf("redis://%s:%s/0", rc.Host, rc.Port)
}

// NewTestPool connects to pc, retrying while the server settles, and applies
// the migrations in migrationsDir.
func NewTestPool(ctx context.Context, t *testing.T, pc *PostgresContainer, migrationsDir string) *pgxpool.Pool {
	t.Helper()

	var pool *pgxpool.Pool
	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = database.NewPool(ctx, database.Config{URL: pc.ConnectionString()})
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("failed to connect after retries: %v", err)
	}

	if err := database.RunMigrations(pc.ConnectionString(), migrationsDir); err != nil {
		pool.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return pool
}

// TruncateAll empties every finrag table and resets the id sequences.
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx,
		`TRUNCATE TABLE index_jobs, document_chunks, conversations RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}

// UnitVector returns a size-long vector with a single 1 at i mod size.
func UnitVector(size, i int) []float32 {
	v := make([]float32, size)
	v[i%size] = 1
	return v
}
