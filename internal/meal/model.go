package meal

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/daily-diet-api/internal/validation"
)

// Date is a calendar date serialized as YYYY-MM-DD
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(validation.DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

type Meal struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        Date      `json:"date"`
	Hour        string    `json:"hour"`
	IsDiet      bool      `json:"is_diet"`
	UserID      uuid.UUID `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateInput is the body accepted by POST /meals
type CreateInput struct {
	validation.Deferred

	Title       string           `json:"title" validate:"required,notblank,max=255"`
	Description string           `json:"description" validate:"max=2000"`
	Date        string           `json:"date" validate:"required,datetime=2006-01-02"`
	Hour        string           `json:"hour" validate:"required,hour"`
	IsDiet      *validation.Bool `json:"is_diet" validate:"required,flag"`
	UserID      string           `json:"user_id" validate:"required,uuid"`
}

// UpdateInput is the body accepted by PUT /meals/{id}/{userId}.
// Omitted fields keep their stored value.
type UpdateInput struct {
	validation.Deferred

	Title       *string          `json:"title" validate:"omitnil,notblank,max=255"`
	Description *string          `json:"description" validate:"omitnil,max=2000"`
	Date        *string          `json:"date" validate:"omitnil,datetime=2006-01-02"`
	Hour        *string          `json:"hour" validate:"omitnil,hour"`
	IsDiet      *validation.Bool `json:"is_diet" validate:"omitnil,flag"`
}

// Count is the payload of the count endpoints
type Count struct {
	Count int `json:"count"`
}
