package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/batch"
)

const batchColumns = "id, name, description, category, price, schedule, current_students, max_students, created_at, updated_at"

type batchRow struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	Description     string    `db:"description"`
	Category        string    `db:"category"`
	Price           int64     `db:"price"`
	Schedule        string    `db:"schedule"`
	CurrentStudents int       `db:"current_students"`
	MaxStudents     int       `db:"max_students"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type batchRepository struct {
	db *sqlx.DB
}

var _ batch.Repository = (*batchRepository)(nil)

func NewBatchRepository(db *sqlx.DB) batch.Repository {
	return &batchRepository{db: db}
}

func (repo batchRepository) CreateBatch(ctx context.Context, b batch.Batch) (batch.Batch, error) {
	b.ID = uuid.New().String()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO batches (`+batchColumns+`)
		VALUES (:id, :name, :description, :category, :price, :schedule, :current_students, :max_students,
			:created_at, :updated_at)`,
		batchRow(b))
	if err != nil {
		return batch.Batch{}, errors.Wrap(err, "inserting batch")
	}
	return b, nil
}

func (repo batchRepository) GetBatchByID(ctx context.Context, id string) (batch.Batch, error) {
	if !validID(id) {
		return batch.Batch{}, batch.ErrNotFound
	}
	var row batchRow
	if err := repo.db.GetContext(ctx, &row, "SELECT "+batchColumns+" FROM batches WHERE id = $1", id); err != nil {
		return batch.Batch{}, trapNoRowsErr(err, batch.ErrNotFound, "getting batch")
	}
	return batch.Batch(row), nil
}

func (repo batchRepository) QueryBatches(ctx context.Context, filter *batch.QueryFilter, ordering []core.DBOrdering) ([]batch.Batch, error) {
	var w where
	if filter != nil && filter.Category != "" {
		w.add("category = $%d", filter.Category)
	}
	q := "SELECT " + batchColumns + " FROM batches" + w.String() +
		" ORDER BY " + core.OrderByClause(ordering, batch.OrderingFields, core.DBOrdering{Field: "created_at"})

	var rows []batchRow
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying batches")
	}
	batches := make([]batch.Batch, 0, len(rows))
	for _, row := range rows {
		batches = append(batches, batch.Batch(row))
	}
	return batches, nil
}

func (repo batchRepository) UpdateBatch(ctx context.Context, b batch.Batch) (batch.Batch, error) {
	if !validID(b.ID) {
		return batch.Batch{}, batch.ErrNotFound
	}
	q, args, err := repo.db.BindNamed(`
		UPDATE batches
		SET name = :name, description = :description, category = :category, price = :price, schedule = :schedule,
			max_students = :max_students, updated_at = :updated_at
		WHERE id = :id AND current_students <= :max_students
		RETURNING `+batchColumns, batchRow(b))
	if err != nil {
		return batch.Batch{}, errors.Wrap(err, "binding batch")
	}
	var row batchRow
	if err = repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return batch.Batch{}, trapNoRowsErr(err, batch.ErrCapacityTooLow, "updating batch")
	}
	return batch.Batch(row), nil
}

func (repo batchRepository) DeleteBatch(ctx context.Context, id string) error {
	if !validID(id) {
		return batch.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, "DELETE FROM batches WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting batch")
	}
	return checkAffected(res, batch.ErrNotFound, "deleting batch")
}

func (repo batchRepository) CountBatches(ctx context.Context) (int, error) {
	var n int
	err := repo.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM batches")
	return n, errors.Wrap(err, "counting batches")
}

// Enroll locks the batch row so that concurrent joins cannot overfill it.
func (repo batchRepository) Enroll(ctx context.Context, batchID, userID string) (batch.Enrollment, error) {
	if !validID(batchID) {
		return batch.Enrollment{}, batch.ErrNotFound
	}
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return batch.Enrollment{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var row batchRow
	if err = tx.GetContext(ctx, &row, "SELECT "+batchColumns+" FROM batches WHERE id = $1 FOR UPDATE", batchID); err != nil {
		return batch.Enrollment{}, trapNoRowsErr(err, batch.ErrNotFound, "locking batch")
	}
	if batch.Batch(row).IsFull() {
		return batch.Enrollment{}, batch.ErrBatchFull
	}

	enr := batch.Enrollment{
		ID:        uuid.New().String(),
		BatchID:   batchID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO batch_enrollments (id, batch_id, user_id, created_at) VALUES ($1, $2, $3, $4)",
		enr.ID, enr.BatchID, enr.UserID, enr.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "batch_enrollments_batch_user_key") {
			return batch.Enrollment{}, batch.ErrAlreadyEnrolled
		}
		return batch.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	if _, err = tx.ExecContext(ctx,
		"UPDATE batches SET current_students = current_students + 1 WHERE id = $1", batchID); err != nil {
		return batch.Enrollment{}, errors.Wrap(err, "incrementing current students")
	}

	if err = tx.Commit(); err != nil {
		return batch.Enrollment{}, errors.Wrap(err, "committing enrollment")
	}
	return enr, nil
}
