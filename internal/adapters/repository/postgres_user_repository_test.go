package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/hsu-emily/punchie-pass/internal/core/domain"
)

var testDB *sqlx.DB

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../../.env")

	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "punchie_user"),
		getEnv("DB_PASSWORD", "secret"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "punchie_db"),
	)

	var err error
	testDB, err = sqlx.Open("postgres", connStr)
	if err != nil {
		log.Printf("Cannot open DB, skipping repository integration tests: %v", err)
		os.Exit(0)
	}

	// Retry for slow CI databases.
	alive := false
	for i := 0; i < 5; i++ {
		if err := testDB.Ping(); err == nil {
			alive = true
			break
		}
		time.Sleep(1 * time.Second)
	}
	if !alive {
		log.Println("Cannot ping DB, skipping repository integration tests")
		os.Exit(0)
	}

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

func TestPostgresUserRepository_Create(t *testing.T) {
	t.Parallel()

	repo := NewPostgresUserRepository(testDB)
	ctx := context.Background()

	t.Run("Should create a user successfully", func(t *testing.T) {
		t.Parallel()

		// UUID emails keep parallel runs from colliding.
		email := fmt.Sprintf("test_%s@example.com", uuid.NewString())
		id := uuid.NewString()

		user, err := domain.NewUser(id, email, "Test User")
		if err != nil {
			t.Fatalf("Failed to create domain user: %v", err)
		}
		_ = user.SetPassword("passwordStrong123")

		if err := repo.Create(ctx, user); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}

		savedUser, err := repo.GetByEmail(ctx, user.Email)
		if err != nil {
			t.Fatalf("Could not retrieve saved user: %v", err)
		}

		if savedUser.ID != user.ID {
			t.Errorf("Expected ID %s, got %s", user.ID, savedUser.ID)
		}
		if savedUser.DisplayName != "Test User" {
			t.Errorf("Expected display name to round-trip, got %q", savedUser.DisplayName)
		}
		if savedUser.CreatedAt.IsZero() || savedUser.UpdatedAt.IsZero() {
			t.Error("Timestamps should not be zero")
		}
	})

	t.Run("Should fail on duplicate email", func(t *testing.T) {
		t.Parallel()

		email := fmt.Sprintf("duplicate_%s@example.com", uuid.NewString())
		user1, _ := domain.NewUser(uuid.NewString(), email, "First")
		_ = user1.SetPassword("password1234")
		_ = repo.Create(ctx, user1)

		user2, _ := domain.NewUser(uuid.NewString(), email, "Second")
		_ = user2.SetPassword("password5678")

		err := repo.Create(ctx, user2)

		if err != domain.ErrEmailAlreadyExists {
			t.Errorf("Expected ErrEmailAlreadyExists, got %v", err)
		}
	})
}

func TestPostgresUserRepository_GetByID(t *testing.T) {
	t.Parallel()
	repo := NewPostgresUserRepository(testDB)
	ctx := context.Background()

	t.Run("Should retrieve existing user by ID", func(t *testing.T) {
		t.Parallel()

		email := fmt.Sprintf("id_test_%s@example.com", uuid.NewString())
		id := uuid.NewString()
		user, _ := domain.NewUser(id, email, "")
		_ = user.SetPassword("password1234")
		_ = repo.Create(ctx, user)

		foundUser, err := repo.GetByID(ctx, id)

		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if foundUser.Email != user.Email {
			t.Errorf("Expected email %s, got %s", user.Email, foundUser.Email)
		}
	})

	t.Run("Should return ErrUserNotFound for non-existent ID", func(t *testing.T) {
		t.Parallel()
		_, err := repo.GetByID(ctx, uuid.NewString())

		if err != domain.ErrUserNotFound {
			t.Errorf("Expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestPostgresUserRepository_GetByEmail(t *testing.T) {
	t.Parallel()
	repo := NewPostgresUserRepository(testDB)
	ctx := context.Background()

	t.Run("Should retrieve existing user by Email", func(t *testing.T) {
		t.Parallel()

		email := fmt.Sprintf("email_test_%s@example.com", uuid.NewString())
		id := uuid.NewString()
		user, _ := domain.NewUser(id, email, "")
		_ = user.SetPassword("password1234")
		_ = repo.Create(ctx, user)

		foundUser, err := repo.GetByEmail(ctx, email)

		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if foundUser.ID != user.ID {
			t.Errorf("Expected ID %s, got %s", user.ID, foundUser.ID)
		}
	})
	t.Run("Should return ErrUserNotFound for non-existent email", func(t *testing.T) {
		t.Parallel()
		_, err := repo.GetByEmail(ctx, "nonexistent@ghost.com")

		if err != domain.ErrUserNotFound {
			t.Errorf("Expected ErrUserNotFound, got %v", err)
		}
	})
}
