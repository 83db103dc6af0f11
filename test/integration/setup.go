package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
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

	votinghttp "github.com/pickme/voting/internal/adapters/handler/http"
	"github.com/pickme/voting/internal/adapters/notifier"
	pgrepo "github.com/pickme/voting/internal/adapters/repository/postgres"
	"github.com/pickme/voting/internal/core/ports"
	"github.com/pickme/voting/internal/core/services"
)

const testJWTSecret = "test-secret"

type TestApp struct {
	Server    *httptest.Server
	Client    *http.Client
	DB        *sql.DB
	Scheduler ports.SchedulerService

	container testcontainers.Container
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	container, connStr, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	require.NoError(t, applyMigrations(db))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sessionRepo := pgrepo.NewSessionRepository(db)
	candidateRepo := pgrepo.NewCandidateRepository(db)
	voteRepo := pgrepo.NewVoteRepository(db)
	resultRepo := pgrepo.NewResultRepository(db)
	orgRepo := pgrepo.NewOrganizationRepository(db)
	notifRepo := pgrepo.NewNotificationRepository(db)
	email := notifier.NewNoopSender(logger)

	sessionService := services.NewSessionService(sessionRepo, candidateRepo, voteRepo, resultRepo, orgRepo, notifRepo, email, logger)
	candidateService := services.NewCandidateService(sessionRepo, candidateRepo)
	voteService := services.NewVoteService(sessionRepo, candidateRepo, voteRepo)
	resultService := services.NewResultService(sessionRepo, candidateRepo, voteRepo, resultRepo, orgRepo, logger)
	analyticsService := services.NewAnalyticsService(sessionRepo, candidateRepo, voteRepo, orgRepo)
	notificationService := services.NewNotificationService(notifRepo)
	scheduler := services.NewSchedulerService(sessionRepo, candidateRepo, voteRepo, resultRepo, orgRepo, notifRepo, email, 5*time.Second, logger)

	handler := votinghttp.NewHandler(
		testJWTSecret,
		votinghttp.NewSessionHandler(sessionService),
		votinghttp.NewCandidateHandler(candidateService),
		votinghttp.NewVoteHandler(voteService),
		votinghttp.NewResultHandler(resultService, analyticsService),
		votinghttp.NewNotificationHandler(notificationService),
	)

	server := httptest.NewServer(handler)

	return &TestApp{
		Server:    server,
		Client:    server.Client(),
		DB:        db,
		Scheduler: scheduler,
		container: container,
	}
}

func (a *TestApp) Teardown(t *testing.T) {
	t.Helper()
	a.Server.Close()
	a.DB.Close()
	require.NoError(t, a.container.Terminate(context.Background()))
}

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

func createUser(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	email := fmt.Sprintf("user-%s@example.com", userID)
	name := fmt.Sprintf("User %s", userID)
	_, err := db.Exec("INSERT INTO users (id, email, name) VALUES ($1, $2, $3)", userID, email, name)
	require.NoError(t, err)
	return userID
}

func tokenFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(15 * time.Minute).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signedToken
}

// createOrgWithAdmin seeds an organization, one admin and n plain members.
// It returns the organization id, the admin id and the member ids.
func createOrgWithAdmin(t *testing.T, db *sql.DB, n int) (uuid.UUID, uuid.UUID, []uuid.UUID) {
	t.Helper()

	orgID := uuid.New()
	_, err := db.Exec("INSERT INTO organizations (id, name) VALUES ($1, $2)", orgID, fmt.Sprintf("Org %s", orgID))
	require.NoError(t, err)

	adminID := createUser(t, db)
	_, err = db.Exec("INSERT INTO organization_members (organization_id, user_id, role) VALUES ($1, $2, 'admin')", orgID, adminID)
	require.NoError(t, err)

	members := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		memberID := createUser(t, db)
		_, err = db.Exec("INSERT INTO organization_members (organization_id, user_id, role) VALUES ($1, $2, 'member')", orgID, memberID)
		require.NoError(t, err)
		members = append(members, memberID)
	}

	return orgID, adminID, members
}
