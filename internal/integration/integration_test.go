package integration

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strconv"
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
	"mathquiz-service/internal/app"
	"mathquiz-service/internal/domain"
	pgresults "mathquiz-service/internal/infra/postgres"
	pgmigrations "mathquiz-service/internal/infra/postgres/migrations"
	infraredis "mathquiz-service/internal/infra/redis"
)

func TestFullGameEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	applyMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	results := pgresults.NewResultRepository(pool)
	service := app.NewGameServiceWithDeps(sessions, results, rand.New(rand.NewSource(1)), time.Now)

	started, err := service.Start(ctx, "player-1", domain.DifficultyMedium)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.TimeLimitSeconds != 20 {
		t.Fatalf("expected medium time limit 20, got %d", started.TimeLimitSeconds)
	}

	// Answer two questions: one right, one wrong. The pending answer is read
	// back through the redis-backed session, exercising the round trip.
	session, ok, err := sessions.Get(ctx, "player-1")
	if err != nil || !ok || session.CurrentQuestion == nil {
		t.Fatalf("session round trip failed: ok=%v err=%v", ok, err)
	}
	outcome, err := service.SubmitAnswer(ctx, "player-1", strconv.Itoa(session.CurrentQuestion.Answer))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !outcome.Correct || outcome.Score < 10 {
		t.Fatalf("expected scored correct answer, got %+v", outcome)
	}
	if _, err := service.SubmitAnswer(ctx, "player-1", "wrong"); err != nil {
		t.Fatalf("submit wrong: %v", err)
	}

	stats, err := service.End(ctx, "player-1")
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if stats.TotalQuestions != 2 || stats.CorrectAnswers != 1 || stats.Accuracy != 50.0 {
		t.Fatalf("unexpected final stats %+v", stats)
	}

	top, err := service.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("expected one persisted result, got %d", len(top))
	}
	if top[0].Score != stats.Score || top[0].Difficulty != domain.DifficultyMedium {
		t.Fatalf("unexpected persisted result %+v", top[0])
	}
	if top[0].ID == 0 || top[0].CreatedAt.IsZero() {
		t.Fatalf("expected persisted row metadata, got %+v", top[0])
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "mathquiz", "POSTGRES_PASSWORD": "mathquizpass", "POSTGRES_DB": "mathquizdb"},
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
	dsn := fmt.Sprintf("postgres://mathquiz:mathquizpass@%s:%s/mathquizdb?sslmode=disable", host, port.Port())
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
