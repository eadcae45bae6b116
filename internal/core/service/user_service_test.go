package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/orderhub/platform/internal/auth"
	"github.com/orderhub/platform/internal/core/domain"
	"github.com/orderhub/platform/internal/core/ports"
	"github.com/rs/zerolog"
)

type stubUserRepo struct {
	users      map[string]*domain.User // keyed by email
	lastFilter ports.ListUsersFilter
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.users[user.Email] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	for email, u := range r.users {
		if u.ID == user.ID {
			r.users[email] = cloneUser(user)
			return cloneUser(user), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, filter ports.ListUsersFilter) ([]*domain.User, int64, error) {
	r.lastFilter = filter
	var out []*domain.User
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, int64(len(out)), nil
}

func newUserService(repo ports.UserRepository) *UserService {
	return NewUserService(repo, auth.NewService("secret"), zerolog.Nop())
}

func TestUserService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:    "Alice@Example.com",
		Password: "secret1",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "secret1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if len(user.Roles) != 1 || user.Roles[0] != domain.RoleUser {
		t.Fatalf("expected default user role, got %v", user.Roles)
	}
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestUserService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)

	input := ports.RegisterInput{Email: "bob@example.com", Password: "secret1"}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), input); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:    "carol@example.com",
		Password: "s3cret1",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "carol@example.com", "s3cret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}

	identity, err := auth.NewService("secret").Verify(token)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if identity.UserID != user.ID || identity.Email != "carol@example.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestUserService_Login_InvalidPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Email: "dave@example.com", Password: "goodpass"})
	if _, _, err := svc.Login(context.Background(), "dave@example.com", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserService_Login_UserNotFound(t *testing.T) {
	svc := newUserService(newStubUserRepo())

	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)

	user, err := svc.Register(context.Background(), ports.RegisterInput{Email: "erin@example.com", Password: "secret1", Name: "Erin"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	updated, err := svc.UpdateProfile(context.Background(), ports.UpdateProfileInput{UserID: user.ID, Name: "Erin Q."})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Erin Q." {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
}

func TestUserService_ListUsers_Clamping(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)

	cases := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 1},
		{-5, -1, 1, 1},
		{2, 1000, 2, 100},
		{1, 100, 1, 100},
		{3, 25, 3, 25},
	}

	for _, tc := range cases {
		result, err := svc.ListUsers(context.Background(), ports.ListUsersInput{Page: tc.page, Limit: tc.limit})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if result.Page != tc.wantPage || result.Limit != tc.wantLimit {
			t.Fatalf("page=%d limit=%d: expected (%d,%d), got (%d,%d)",
				tc.page, tc.limit, tc.wantPage, tc.wantLimit, result.Page, result.Limit)
		}
		if repo.lastFilter.Page != tc.wantPage || repo.lastFilter.Limit != tc.wantLimit {
			t.Fatalf("repo saw unclamped filter: %+v", repo.lastFilter)
		}
	}
}
