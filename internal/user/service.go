package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/redmonkez12/daily-diet-api/internal/logging"
	"github.com/redmonkez12/daily-diet-api/internal/validation"
)

// Service handles user business logic
type Service struct {
	store  Store
	logger *logging.Logger
}

func NewService(store Store, logger *logging.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List returns all users
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

// Get returns the user with the given ID or ErrNotFound
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.store.GetByID(ctx, id)
}

// Exists reports whether the user is stored
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.store.Exists(ctx, id)
}

// Create validates the input and stores a new user
func (s *Service) Create(ctx context.Context, in Input) (*User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.store.Create(ctx, in.Name, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Debug("user created", "user_id", u.ID)
	return u, nil
}

// Update checks the user exists, then validates and applies the new values
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*User, error) {
	if err := s.ensureExists(ctx, id); err != nil {
		return nil, err
	}

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.store.Update(ctx, id, in.Name, in.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

// Delete removes the user and, through the foreign key, their meals
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.ensureExists(ctx, id); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Debug("user deleted", "user_id", id)
	return nil
}

func (s *Service) ensureExists(ctx context.Context, id uuid.UUID) error {
	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}
