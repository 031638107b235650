// Package mockstore provides in-memory user and meal stores for tests.
//
// The two stores share one Data value so that deleting a user cascades to
// their meals, mirroring the foreign key in the real schema.
package mockstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/daily-diet-api/internal/meal"
	"github.com/redmonkez12/daily-diet-api/internal/user"
)

// Data is the shared in-memory state
type Data struct {
	mu sync.Mutex

	users     map[uuid.UUID]user.User
	userOrder []uuid.UUID
	meals     map[uuid.UUID]meal.Meal

	// Now is used for timestamps; tests may replace it
	Now func() time.Time

	// Error injection for testing error paths
	ErrorOnNextCall error
}

// New returns empty stores backed by the same data
func New() (*Data, *UserStore, *MealStore) {
	d := &Data{
		users: make(map[uuid.UUID]user.User),
		meals: make(map[uuid.UUID]meal.Meal),
		Now:   time.Now,
	}
	return d, &UserStore{d: d}, &MealStore{d: d}
}

// checkError returns and clears any injected error.
func (d *Data) checkError() error {
	if d.ErrorOnNextCall != nil {
		err := d.ErrorOnNextCall
		d.ErrorOnNextCall = nil
		return err
	}
	return nil
}

// UserStore implements user.Store in memory
type UserStore struct {
	d *Data
}

var _ user.Store = (*UserStore)(nil)

func (s *UserStore) List(_ context.Context) ([]user.User, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.d.checkError(); err != nil {
		return nil, err
	}

	out := make([]user.User, 0, len(s.d.userOrder))
	for _, id := range s.d.userOrder {
		out = append(out, s.d.users[id])
	}
	return out, nil
}

func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.d.checkError(); err != nil {
		return nil, err
	}

	u, ok := s.d.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.d.checkError(); err != nil {
		return false, err
	}

	_, ok := s.d.users[id]
	return ok, nil
}

func (s *UserStore) Create(_ context.Context, name, email string) (*user.User, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.d.checkError(); err != nil {
		return nil, err
	}

	now := s.d.Now()
	u := user.User{ID: uuid.New(), Name: name, Email: email, CreatedAt: now, UpdatedAt: now}
	s.d.users[u.ID] = u
	s.d.userOrder = append(s.d.userOrder, u.ID)
	return &u, nil
}

func (s *UserStore) Update(_ context.Context, id uuid.UUID, name, email string) (*user.User, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.d.checkError(); err != nil {
		return nil, err
	}

	u, ok := s.d.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	u.Name, u.Email, u.UpdatedAt = name, email, s.d.Now()
	s.d.users[id] = u
	return &u, nil
}

func (s *UserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.d.checkError(); err != nil {
		return err
	}

	if _, ok := s.d.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(s.d.users, id)
	for i, uid := range s.d.userOrder {
		if uid == id {
			s.d.userOrder = append(s.d.userOrder[:i], s.d.userOrder[i+1:]...)
			break
		}
	}
	for mid, m := range s.d.meals {
		if m.UserID == id {
			delete(s.d.meals, mid)
		}
	}
	return nil
}

// MealStore implements meal.Store in memory
type MealStore struct {
	d *Data
}

var _ meal.Store = (*MealStore)(nil)

// ownedSorted returns the user's meals ordered by date, hour and creation
func (s *MealStore) ownedSorted(userID uuid.UUID) []meal.Meal {
	var out []meal.Meal
	for _, m := range s.d.meals {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.Before(b.Date.Time)
		}
		if a.Hour != b.Hour {
			return a.Hour < b.Hour
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out
}

func (s *MealStore) ListByUser(_ context.Context, userID uuid.UUID) ([]meal.Meal, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.d.checkError(); err != nil {
		return nil, err
	}

	out := s.ownedSorted(userID)
	if out == nil {
		out = []meal.Meal{}
	}
	return out, nil
}

func (s *MealStore) Count(_ context.Context, userID uuid.UUID, isDiet *bool) (int, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.d.checkError(); err != nil {
		return 0, err
	}

	n := 0
	for _, m := range s.d.meals {
		if m.UserID != userID {
			continue
		}
		if isDiet != nil && m.IsDiet != *isDiet {
			continue
		}
		n++
	}
	return n, nil
}

func (s *MealStore) DietFlags(_ context.Context, userID uuid.UUID) ([]bool, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.d.checkError(); err != nil {
		return nil, err
	}

	meals := s.ownedSorted(userID)
	flags := make([]bool, 0, len(meals))
	for _, m := range meals {
		flags = append(flags, m.IsDiet)
	}
	return flags, nil
}

func (s *MealStore) GetOwned(_ context.Context, id, userID uuid.UUID) (*meal.Meal, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.d.checkError(); err != nil {
		return nil, err
	}

	m, ok := s.d.meals[id]
	if !ok || m.UserID != userID {
		return nil, meal.ErrNotFound
	}
	return &m, nil
}

func (s *MealStore) Create(_ context.Context, in *meal.Meal) (*meal.Meal, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.d.checkError(); err != nil {
		return nil, err
	}

	now := s.d.Now()
	m := *in
	m.ID = uuid.New()
	m.CreatedAt, m.UpdatedAt = now, now
	s.d.meals[m.ID] = m
	return &m, nil
}

func (s *MealStore) Update(_ context.Context, in *meal.Meal) (*meal.Meal, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.d.checkError(); err != nil {
		return nil, err
	}

	m, ok := s.d.meals[in.ID]
	if !ok || m.UserID != in.UserID {
		return nil, meal.ErrNotFound
	}
	m.Title = in.Title
	m.Description = in.Description
	m.Date = in.Date
	m.Hour = in.Hour
	m.IsDiet = in.IsDiet
	m.UpdatedAt = s.d.Now()
	s.d.meals[m.ID] = m
	return &m, nil
}

func (s *MealStore) Delete(_ context.Context, id, userID uuid.UUID) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.d.checkError(); err != nil {
		return err
	}

	m, ok := s.d.meals[id]
	if !ok || m.UserID != userID {
		return meal.ErrNotFound
	}
	delete(s.d.meals, id)
	return nil
}
