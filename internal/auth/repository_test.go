package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"quiz-service/internal/models"
	"quiz-service/pkg/database"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.Open(&database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "auth.db"),
	})
	if err != nil {
		t.Fatalf("database.Open failed: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.Migrate(db, &models.User{}); err != nil {
		t.Fatalf("database.Migrate failed: %v", err)
	}
	return NewRepository(db)
}

func TestRepositoryCreateAndGetUser(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	user := &models.User{Email: "a@x.com", Password: "hash", Authority: models.DefaultAuthority}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected generated id")
	}

	got, err := repo.GetUserByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.ID != user.ID || got.Authority != models.DefaultAuthority {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestRepositoryGetUnknownUser(t *testing.T) {
	repo := newTestRepository(t)
	if _, err := repo.GetUserByEmail(context.Background(), "nobody@x.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("GetUserByEmail error = %v, want ErrUserNotFound", err)
	}
}

func TestRepositoryDuplicateEmail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.CreateUser(ctx, &models.User{Email: "a@x.com", Password: "h1", Authority: models.DefaultAuthority}); err != nil {
		t.Fatalf("first CreateUser failed: %v", err)
	}
	err := repo.CreateUser(ctx, &models.User{Email: "a@x.com", Password: "h2", Authority: models.DefaultAuthority})
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("second CreateUser error = %v, want ErrUserAlreadyExists", err)
	}
}
