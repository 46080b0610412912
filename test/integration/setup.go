package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	handler "github.com/poll/analytics/internal/adapters/handler/http"
	repo "github.com/poll/analytics/internal/adapters/repository/postgres"
	"github.com/poll/analytics/internal/core/services"
)

const testJWTSecret = "test-secret"

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		_, err = db.Exec(string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Client      *http.Client
	DBContainer testcontainers.Container
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	err = applyMigrations(db)
	require.NoError(t, err)

	log := zap.NewNop()
	store := repo.NewAnalyticsRepository(db)
	svc := services.NewAnalyticsService(store, log)
	analyticsHandler := handler.NewAnalyticsHandler(svc, store, log)
	router := handler.NewHandler(analyticsHandler, []byte(testJWTSecret))

	server := httptest.NewServer(router)

	return &TestApp{
		DB:          db,
		Server:      server,
		Client:      server.Client(),
		DBContainer: dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

// createUser inserts a user and returns its id.
func (app *TestApp) createUser(t *testing.T) int64 {
	t.Helper()

	username := fmt.Sprintf("user-%s", uuid.New())
	var id int64
	err := app.DB.QueryRow(
		"INSERT INTO users (username) VALUES ($1) RETURNING id", username,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func (app *TestApp) tokenFor(t *testing.T, userID int64) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"exp": time.Now().Add(15 * time.Minute).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

// createPoll inserts a poll with options and returns the poll id and
// option ids in insertion order.
func (app *TestApp) createPoll(t *testing.T, ownerID int64, question string, viewCount int, createdAt time.Time, options ...string) (int64, []int64) {
	t.Helper()

	var pollID int64
	err := app.DB.QueryRow(
		"INSERT INTO polls (question, owner_id, view_count, created_at) VALUES ($1, $2, $3, $4) RETURNING id",
		question, ownerID, viewCount, createdAt,
	).Scan(&pollID)
	require.NoError(t, err)

	optionIDs := make([]int64, 0, len(options))
	for _, text := range options {
		var optionID int64
		err := app.DB.QueryRow(
			"INSERT INTO options (poll_id, text) VALUES ($1, $2) RETURNING id", pollID, text,
		).Scan(&optionID)
		require.NoError(t, err)
		optionIDs = append(optionIDs, optionID)
	}
	return pollID, optionIDs
}

func (app *TestApp) castVote(t *testing.T, optionID, userID int64, at time.Time) {
	t.Helper()

	_, err := app.DB.Exec(
		"INSERT INTO votes (option_id, user_id, created_at) VALUES ($1, $2, $3)",
		optionID, userID, at,
	)
	require.NoError(t, err)
}

// getJSON issues an authenticated GET and decodes the response body.
func (app *TestApp) get(t *testing.T, path, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, app.Server.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	return resp
}
