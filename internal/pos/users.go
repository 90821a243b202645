package pos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
)

var ErrBadCredentials = errors.New("username or password is incorrect")

// PasswordCost is the bcrypt cost for new hashes.
var PasswordCost = bcrypt.DefaultCost

const minPasswordLength = 8

func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", invalid("password must be at least %d characters", minPasswordLength)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Authenticate checks staff credentials. Unknown users, inactive users and
// wrong passwords all fail with ErrBadCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.Active || !VerifyPassword(u.PasswordHash, password) {
		s.lg.Warn("login_failed", map[string]any{"username": u.Username})
		return nil, ErrBadCredentials
	}
	s.lg.Info("login", map[string]any{"user_id": u.ID, "username": u.Username})
	return u, nil
}

// NewUser validates and hashes a new staff account.
func NewUser(username, password, displayName, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username is required")
	}
	if role == "" {
		role = models.RoleStaff
	}
	if role != models.RoleAdmin && role != models.RoleStaff {
		return nil, invalid("role must be admin or staff")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	if displayName == "" {
		displayName = username
	}
	return &models.User{Username: username, PasswordHash: hash, DisplayName: displayName, Role: role, Active: true}, nil
}
