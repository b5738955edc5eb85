package inmemdb

import (
	"context"
	"strings"
	"time"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/batch"
)

var batchComparators = map[string]func(a, b batch.Batch) int{
	"name":       func(a, b batch.Batch) int { return strings.Compare(a.Name, b.Name) },
	"price":      func(a, b batch.Batch) int { return compareInts(a.Price, b.Price) },
	"created_at": func(a, b batch.Batch) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

type batchRepository struct {
	db *DB
}

var _ batch.Repository = (*batchRepository)(nil)

func NewBatchRepository(db *DB) batch.Repository {
	return &batchRepository{db: db}
}

func (repo *batchRepository) CreateBatch(_ context.Context, b batch.Batch) (batch.Batch, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	b.ID = newID()
	repo.db.batches[b.ID] = &b
	return b, nil
}

func (repo *batchRepository) GetBatchByID(_ context.Context, id string) (batch.Batch, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if b, ok := repo.db.batches[id]; ok {
		return *b, nil
	}
	return batch.Batch{}, batch.ErrNotFound
}

func (repo *batchRepository) QueryBatches(_ context.Context, filter *batch.QueryFilter, ordering []core.DBOrdering) ([]batch.Batch, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	batches := make([]batch.Batch, 0, len(repo.db.batches))
	for _, b := range repo.db.batches {
		if filter == nil || filter.Category == "" || b.Category == filter.Category {
			batches = append(batches, *b)
		}
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	sortBy(batches, ordering, batchComparators)
	return batches, nil
}

func (repo *batchRepository) UpdateBatch(_ context.Context, b batch.Batch) (batch.Batch, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.batches[b.ID]
	if !ok {
		return batch.Batch{}, batch.ErrNotFound
	}
	if orig.CurrentStudents > b.MaxStudents {
		return batch.Batch{}, batch.ErrCapacityTooLow
	}
	orig.Name = b.Name
	orig.Description = b.Description
	orig.Category = b.Category
	orig.Price = b.Price
	orig.Schedule = b.Schedule
	orig.MaxStudents = b.MaxStudents
	orig.UpdatedAt = b.UpdatedAt
	return *orig, nil
}

func (repo *batchRepository) DeleteBatch(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.batches[id]; !ok {
		return batch.ErrNotFound
	}
	delete(repo.db.batches, id)
	for eid, e := range repo.db.enrollments {
		if e.BatchID == id {
			delete(repo.db.enrollments, eid)
		}
	}
	return nil
}

func (repo *batchRepository) CountBatches(_ context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.batches), nil
}

func (repo *batchRepository) Enroll(_ context.Context, batchID, userID string) (batch.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	b, ok := repo.db.batches[batchID]
	if !ok {
		return batch.Enrollment{}, batch.ErrNotFound
	}
	for _, e := range repo.db.enrollments {
		if e.BatchID == batchID && e.UserID == userID {
			return batch.Enrollment{}, batch.ErrAlreadyEnrolled
		}
	}
	if b.IsFull() {
		return batch.Enrollment{}, batch.ErrBatchFull
	}

	e := &batch.Enrollment{ID: newID(), BatchID: batchID, UserID: userID, CreatedAt: time.Now().UTC()}
	repo.db.enrollments[e.ID] = e
	b.CurrentStudents++
	return *e, nil
}
