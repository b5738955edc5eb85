package batch

import (
	"context"
	"time"

	"github.com/Shubham414kumar/vidyasphere/core"
)

var (
	ErrNotFound        = core.NewNotFoundError("batch")
	ErrBatchFull       = core.NewConflictError("this batch is full")
	ErrAlreadyEnrolled = core.NewConflictError("you already joined this batch")
	ErrCapacityTooLow  = core.NewConflictError("max students cannot be lower than the current number of students")
)

type (
	Repository interface {
		CreateBatch(ctx context.Context, b Batch) (Batch, error)
		GetBatchByID(ctx context.Context, id string) (Batch, error)
		QueryBatches(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Batch, error)
		UpdateBatch(ctx context.Context, b Batch) (Batch, error)
		DeleteBatch(ctx context.Context, id string) error
		CountBatches(ctx context.Context) (int, error)
		// Enroll records the enrollment and increments current_students atomically.
		// It fails with ErrBatchFull or ErrAlreadyEnrolled.
		Enroll(ctx context.Context, batchID, userID string) (Enrollment, error)
	}

	Service interface {
		List(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Batch, error)
		Get(ctx context.Context, id string) (Batch, error)
		Create(ctx context.Context, nb NewBatch) (Batch, error)
		Update(ctx context.Context, id string, nb NewBatch) (Batch, error)
		Delete(ctx context.Context, id string) error
		Join(ctx context.Context, userID, batchID string) (Enrollment, error)
		Count(ctx context.Context) (int, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) List(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Batch, error) {
	return svc.repo.QueryBatches(ctx, filter, core.ValidOrderings(ordering, OrderingFields, defaultOrdering))
}

func (svc *service) Get(ctx context.Context, id string) (Batch, error) {
	return svc.repo.GetBatchByID(ctx, id)
}

func (svc *service) Create(ctx context.Context, nb NewBatch) (Batch, error) {
	now := time.Now().UTC()
	return svc.repo.CreateBatch(ctx, Batch{
		Name:        nb.Name,
		Description: nb.Description,
		Category:    nb.Category,
		Price:       nb.Price,
		Schedule:    nb.Schedule,
		MaxStudents: nb.MaxStudents,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) Update(ctx context.Context, id string, nb NewBatch) (Batch, error) {
	b, err := svc.repo.GetBatchByID(ctx, id)
	if err != nil {
		return Batch{}, err
	}
	if nb.MaxStudents < b.CurrentStudents {
		return Batch{}, ErrCapacityTooLow
	}
	b.Name = nb.Name
	b.Description = nb.Description
	b.Category = nb.Category
	b.Price = nb.Price
	b.Schedule = nb.Schedule
	b.MaxStudents = nb.MaxStudents
	b.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateBatch(ctx, b)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteBatch(ctx, id)
}

// Join enrolls the user. The repository re-checks capacity under its own lock or row lock.
func (svc *service) Join(ctx context.Context, userID, batchID string) (Enrollment, error) {
	b, err := svc.repo.GetBatchByID(ctx, batchID)
	if err != nil {
		return Enrollment{}, err
	}
	if b.IsFull() {
		return Enrollment{}, ErrBatchFull
	}
	return svc.repo.Enroll(ctx, batchID, userID)
}

func (svc *service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountBatches(ctx)
}
