package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"portfolio-tracker/database"
	"portfolio-tracker/models"
)

type UserService struct {
	store database.Store
	log   *slog.Logger
}

func NewUserService(store database.Store, log *slog.Logger) *UserService {
	return &UserService{store: store, log: log}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, id uint) (models.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (models.User, error) {
	name := strings.TrimSpace(req.Name)
	if n := len([]rune(name)); n < 3 || n > 50 {
		return models.User{}, invalid("name must be between 3 and 50 characters")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil || addr.Name != "" {
		return models.User{}, invalid("invalid email address %q", req.Email)
	}
	email := strings.ToLower(addr.Address)

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return models.User{}, fmt.Errorf("user with email %s: %w", email, database.ErrAlreadyExists)
	} else if !errors.Is(err, database.ErrNotFound) {
		return models.User{}, err
	}

	u := models.User{Username: name, Email: email}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		return models.User{}, err
	}
	s.log.Info("user created", "user_id", u.ID)
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", "user_id", id)
	return nil
}
