package meal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/daily-diet-api/internal/database"
)

var ErrNotFound = errors.New("meal not found")

// Store is the persistence contract the service depends on.
// Every lookup is scoped to the owning user.
type Store interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Meal, error)
	Count(ctx context.Context, userID uuid.UUID, isDiet *bool) (int, error)
	DietFlags(ctx context.Context, userID uuid.UUID) ([]bool, error)
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*Meal, error)
	Create(ctx context.Context, m *Meal) (*Meal, error)
	Update(ctx context.Context, m *Meal) (*Meal, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// Repository handles meal data persistence
type Repository struct {
	db bun.IDB
}

var _ Store = (*Repository)(nil)

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// ListByUser returns the user's meals in chronological order
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Meal, error) {
	var rows []database.Meal
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("date ASC", "hour ASC", "created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}

	meals := make([]Meal, 0, len(rows))
	for i := range rows {
		meals = append(meals, *mapDBMealToModel(&rows[i]))
	}
	return meals, nil
}

// Count returns how many meals the user has. A non-nil isDiet restricts
// the count to meals with that flag.
func (r *Repository) Count(ctx context.Context, userID uuid.UUID, isDiet *bool) (int, error) {
	q := r.db.NewSelect().
		Model((*database.Meal)(nil)).
		Where("user_id = ?", userID)

	if isDiet != nil {
		q = q.Where("is_diet = ?", *isDiet)
	}

	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count meals: %w", err)
	}

	return count, nil
}

// DietFlags returns the is_diet flag of each of the user's meals in
// chronological order
func (r *Repository) DietFlags(ctx context.Context, userID uuid.UUID) ([]bool, error) {
	var flags []bool
	err := r.db.NewSelect().
		Model((*database.Meal)(nil)).
		Column("is_diet").
		Where("user_id = ?", userID).
		Order("date ASC", "hour ASC", "created_at ASC").
		Scan(ctx, &flags)

	if err != nil {
		return nil, fmt.Errorf("failed to load diet flags: %w", err)
	}

	return flags, nil
}

// GetOwned retrieves a meal by ID if it belongs to userID
func (r *Repository) GetOwned(ctx context.Context, id, userID uuid.UUID) (*Meal, error) {
	dbMeal := new(database.Meal)
	err := r.db.NewSelect().
		Model(dbMeal).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get meal: %w", err)
	}

	return mapDBMealToModel(dbMeal), nil
}

// Create inserts a meal with a fresh ID and server-side timestamps
func (r *Repository) Create(ctx context.Context, m *Meal) (*Meal, error) {
	dbMeal := &database.Meal{
		ID:          uuid.New(),
		Title:       m.Title,
		Description: m.Description,
		Date:        m.Date.Time,
		Hour:        m.Hour,
		IsDiet:      m.IsDiet,
		UserID:      m.UserID,
	}

	_, err := r.db.NewInsert().
		Model(dbMeal).
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}

	return mapDBMealToModel(dbMeal), nil
}

// Update writes every mutable field of m and refreshes updated_at.
// The row is matched on both ID and owner.
func (r *Repository) Update(ctx context.Context, m *Meal) (*Meal, error) {
	dbMeal := new(database.Meal)
	result, err := r.db.NewUpdate().
		Model(dbMeal).
		Set("title = ?", m.Title).
		Set("description = ?", m.Description).
		Set("date = ?", m.Date.String()).
		Set("hour = ?", m.Hour).
		Set("is_diet = ?", m.IsDiet).
		Set("updated_at = NOW()").
		Where("id = ?", m.ID).
		Where("user_id = ?", m.UserID).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update meal: %w", err)
	}

	if rowsAffected, err := result.RowsAffected(); err == nil && rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return mapDBMealToModel(dbMeal), nil
}

// Delete removes a meal owned by userID
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Meal)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBMealToModel converts database model to domain model
func mapDBMealToModel(dbm *database.Meal) *Meal {
	return &Meal{
		ID:          dbm.ID,
		Title:       dbm.Title,
		Description: dbm.Description,
		Date:        NewDate(dbm.Date),
		Hour:        normalizeHour(dbm.Hour),
		IsDiet:      dbm.IsDiet,
		UserID:      dbm.UserID,
		CreatedAt:   dbm.CreatedAt,
		UpdatedAt:   dbm.UpdatedAt,
	}
}

// normalizeHour drops fractional seconds some drivers append to TIME values
func normalizeHour(h string) string {
	if i := strings.IndexByte(h, '.'); i >= 0 {
		return h[:i]
	}
	return h
}
