package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/daily-diet-api/internal/validation"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input is the body accepted by create and update
type Input struct {
	validation.Deferred

	Name  string `json:"name" validate:"required,notblank,max=255"`
	Email string `json:"email" validate:"required,notblank,max=254"`
}
