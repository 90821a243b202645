package store

import (
	"context"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
)

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.conn(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, wrap(err, "list users")
	}
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, wrap(err, "get user")
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, wrap(err, "get user by username")
	}
	return &u, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.conn(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, wrap(err, "count users")
	}
	return n, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return wrap(s.conn(ctx).Create(u).Error, "create user")
}

func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	return wrap(s.conn(ctx).Save(u).Error, "save user")
}

func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return notFoundIfNone(s.conn(ctx).Delete(&models.User{}, id), "delete user")
}
