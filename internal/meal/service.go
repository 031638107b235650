package meal

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/redmonkez12/daily-diet-api/internal/logging"
	"github.com/redmonkez12/daily-diet-api/internal/metrics"
	"github.com/redmonkez12/daily-diet-api/internal/user"
	"github.com/redmonkez12/daily-diet-api/internal/validation"
)

// UserChecker answers whether a user exists
type UserChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service handles meal business logic. Every operation first confirms the
// owning user (or the owned meal) exists.
type Service struct {
	store  Store
	users  UserChecker
	logger *logging.Logger
}

func NewService(store Store, users UserChecker, logger *logging.Logger) *Service {
	return &Service{store: store, users: users, logger: logger}
}

// ListByUser returns all meals of a user
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Meal, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListByUser(ctx, userID)
}

// CountRegistered returns the number of meals of a user
func (s *Service) CountRegistered(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.count(ctx, userID, nil)
}

// CountInDiet returns the number of the user's meals within the diet
func (s *Service) CountInDiet(ctx context.Context, userID uuid.UUID) (int, error) {
	inDiet := true
	return s.count(ctx, userID, &inDiet)
}

// CountOutDiet returns the number of the user's meals outside the diet
func (s *Service) CountOutDiet(ctx context.Context, userID uuid.UUID) (int, error) {
	inDiet := false
	return s.count(ctx, userID, &inDiet)
}

// BestInDietSequence returns the longest run of consecutive in-diet meals
func (s *Service) BestInDietSequence(ctx context.Context, userID uuid.UUID) (int, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return 0, err
	}

	flags, err := s.store.DietFlags(ctx, userID)
	if err != nil {
		return 0, err
	}

	return longestRun(flags), nil
}

// Get returns a meal owned by the user. A missing user yields
// user.ErrNotFound, a missing meal ErrNotFound.
func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*Meal, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.GetOwned(ctx, id, userID)
}

// Create stores a meal. The owner is resolved before the remaining
// fields are validated, so an unknown user is reported as such whatever
// else is wrong with the body.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Meal, error) {
	userID, err := validation.ParseID(in.UserID)
	if err != nil {
		return nil, validation.FieldError("user_id", "must be a valid UUID")
	}

	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	m, err := fromCreateInput(in, userID)
	if err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}

	metrics.RecordMealCreated(created.IsDiet)
	s.logger.Debug("meal created", "meal_id", created.ID, "user_id", userID)
	return created, nil
}

// Update applies the supplied fields to an owned meal. ID, owner and
// creation time never change.
func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, in UpdateInput) (*Meal, error) {
	current, err := s.store.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	next, err := applyUpdate(*current, in)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, &next)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update meal: %w", err)
	}

	return updated, nil
}

// Delete removes an owned meal
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.store.GetOwned(ctx, id, userID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete meal: %w", err)
	}

	return nil
}

func (s *Service) count(ctx context.Context, userID uuid.UUID, isDiet *bool) (int, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return 0, err
	}
	return s.store.Count(ctx, userID, isDiet)
}

func (s *Service) ensureUser(ctx context.Context, userID uuid.UUID) error {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return user.ErrNotFound
	}
	return nil
}

func fromCreateInput(in CreateInput, userID uuid.UUID) (*Meal, error) {
	date, err := validation.ParseDate(in.Date)
	if err != nil {
		return nil, validation.FieldError("date", "must be a date formatted as "+validation.DateLayout)
	}

	hour, err := validation.ParseHour(in.Hour)
	if err != nil {
		return nil, validation.FieldError("hour", "must be a time formatted as HH:MM or HH:MM:SS")
	}

	return &Meal{
		Title:       in.Title,
		Description: in.Description,
		Date:        NewDate(date),
		Hour:        hour,
		IsDiet:      in.IsDiet.Value(),
		UserID:      userID,
	}, nil
}

func applyUpdate(m Meal, in UpdateInput) (Meal, error) {
	if in.Title != nil {
		m.Title = *in.Title
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.Date != nil {
		date, err := validation.ParseDate(*in.Date)
		if err != nil {
			return Meal{}, validation.FieldError("date", "must be a date formatted as "+validation.DateLayout)
		}
		m.Date = NewDate(date)
	}
	if in.Hour != nil {
		hour, err := validation.ParseHour(*in.Hour)
		if err != nil {
			return Meal{}, validation.FieldError("hour", "must be a time formatted as HH:MM or HH:MM:SS")
		}
		m.Hour = hour
	}
	if in.IsDiet != nil {
		m.IsDiet = in.IsDiet.Value()
	}
	return m, nil
}
