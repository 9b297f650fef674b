package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"archetype-bot/internal/app"
	"archetype-bot/internal/domain"
	"archetype-bot/internal/infra/memory"
	"archetype-bot/internal/infra/postgres"
	pgmigrations "archetype-bot/internal/infra/postgres/migrations"
	redisinfra "archetype-bot/internal/infra/redis"
	"archetype-bot/internal/questionbank"
)

func TestFullQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	applyMigrations(t, ctx, pgURL)

	pool := connectPool(t, ctx, pgURL)
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	bank, err := questionbank.Build(map[string][]string{
		"Warrior": {"1", "3", "5", "7", "9"},
		"Sage":    {"2", "4", "6", "8", "10"},
	})
	if err != nil {
		t.Fatalf("build bank: %v", err)
	}

	results := postgres.NewResultRepository(pool)
	comments := postgres.NewCommentStore(pool)
	gateStore := redisinfra.NewGateStore(redisClient, time.Hour)
	gate := app.NewIntervalGate(5, "leave a comment in the group", nil, gateStore)
	engine := app.NewEngine(bank, memory.NewSessionStore(), gate, results, nil)

	const userID = int64(101)
	if _, err := engine.Begin(ctx, userID); err != nil {
		t.Fatalf("begin: %v", err)
	}

	var step app.NextStep
	for i := 0; i < 5; i++ {
		step, err = engine.Advance(ctx, userID, 0)
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	if step.Kind != app.StepGate {
		t.Fatalf("expected gate after 5th answer, got %+v", step)
	}

	// The user comments in the group; the tracker satisfies the gate.
	err = comments.SaveComment(ctx, domain.Comment{
		UserID: userID, MessageID: 1, ChatID: -100200, Text: "great test", CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("save comment: %v", err)
	}
	if err := gateStore.Satisfy(ctx, userID); err != nil {
		t.Fatalf("satisfy: %v", err)
	}

	step, err = engine.Resume(ctx, userID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if step.Kind != app.StepQuestion || step.Position != 6 {
		t.Fatalf("expected question 6 after confirmation, got %+v", step)
	}

	for i := 0; i < 5; i++ {
		step, err = engine.Advance(ctx, userID, 1)
		if err != nil {
			t.Fatalf("advance tail %d: %v", i, err)
		}
	}
	if step.Kind != app.StepCompleted {
		t.Fatalf("expected completion, got %+v", step)
	}

	// The report round-trips through Postgres in ranked order.
	persisted, err := results.LatestReport(ctx, userID)
	if err != nil {
		t.Fatalf("latest report: %v", err)
	}
	if len(persisted.Entries) != len(step.Report.Entries) {
		t.Fatalf("expected %d persisted entries, got %d", len(step.Report.Entries), len(persisted.Entries))
	}
	for i, entry := range step.Report.Entries {
		got := persisted.Entries[i]
		if got.Category != entry.Category || got.Score != entry.Score || got.Percentage != entry.Percentage {
			t.Fatalf("entry %d mismatch: want %+v, got %+v", i, entry, got)
		}
	}

	// Completion consumes the gate satisfaction flag.
	satisfied, err := gateStore.IsSatisfied(ctx, userID)
	if err != nil {
		t.Fatalf("is satisfied: %v", err)
	}
	if satisfied {
		t.Fatalf("expected satisfaction consumed on completion")
	}

	// A retake now requires one more comment than is on record... and the one
	// comment already left covers it.
	check, err := comments.CanTakeTest(ctx, userID, -100200)
	if err != nil {
		t.Fatalf("can take test: %v", err)
	}
	if check.TestCount != 1 || check.CommentCount != 1 || !check.CanTake {
		t.Fatalf("unexpected access check %+v", check)
	}
}

func TestUserRegistryRoundTrip(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, cleanup := startPostgres(t, ctx)
	defer cleanup()
	applyMigrations(t, ctx, pgURL)

	pool := connectPool(t, ctx, pgURL)
	defer pool.Close()

	users := postgres.NewUserRepository(pool)
	user := domain.User{TelegramID: 7, Username: "alice", FirstName: "Alice"}
	if err := users.Upsert(ctx, user); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// Second upsert refreshes fields instead of failing.
	user.FirstName = "Alice B"
	if err := users.Upsert(ctx, user); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := users.Get(ctx, 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FirstName != "Alice B" || got.Username != "alice" {
		t.Fatalf("unexpected user %+v", got)
	}

	count, err := users.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected 1 user, got %d err %v", count, err)
	}

	found, err := users.Search(ctx, "ali", 10)
	if err != nil || len(found) != 1 {
		t.Fatalf("expected search hit, got %v err %v", found, err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func applyMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func connectPool(t *testing.T, ctx context.Context, dsn string) *pgxpool.Pool {
	t.Helper()
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	return pool
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
