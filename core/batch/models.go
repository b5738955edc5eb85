package batch

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Shubham414kumar/vidyasphere/core"
)

type Batch struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Price           int64     `json:"price"` // whole rupees per month
	Schedule        string    `json:"schedule"`
	CurrentStudents int       `json:"current_students"`
	MaxStudents     int       `json:"max_students"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

func (b Batch) IsFull() bool { return b.CurrentStudents >= b.MaxStudents }

// SeatsLeft never goes below zero.
func (b Batch) SeatsLeft() int {
	if b.IsFull() {
		return 0
	}
	return b.MaxStudents - b.CurrentStudents
}

// NewBatch contains information needed to create or replace a Batch.
type NewBatch struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	Category    string `json:"category" validate:"max=60"`
	Price       int64  `json:"price" validate:"min=0"`
	Schedule    string `json:"schedule" validate:"max=120"`
	MaxStudents int    `json:"max_students" validate:"required,min=1,max=10000"`
}

func (nb *NewBatch) Validate(validate *validator.Validate) error {
	nb.Name = core.CleanString(nb.Name)
	nb.Description = core.CleanString(nb.Description)
	nb.Category = core.CleanString(nb.Category)
	nb.Schedule = core.CleanString(nb.Schedule)
	return validate.Struct(nb)
}

type Enrollment struct {
	ID        string    `json:"id"`
	BatchID   string    `json:"batch_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type QueryFilter struct {
	Category string `query:"category"`
}

var (
	OrderingFields = map[string]bool{
		"name":       true,
		"price":      true,
		"created_at": true,
	}
	defaultOrdering = core.DBOrdering{Field: "created_at"}
)
