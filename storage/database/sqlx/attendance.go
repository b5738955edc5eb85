package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/attendance"
)

type subjectRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type recordRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	SubjectID   string    `db:"subject_id"`
	SubjectName string    `db:"subject_name"`
	Date        core.Date `db:"date"`
	Present     bool      `db:"present"`
	CreatedAt   time.Time `db:"created_at"`
}

const recordQuery = `
	SELECT a.id, a.user_id, a.subject_id, s.name AS subject_name, a.date, a.present, a.created_at
	FROM attendance a
	JOIN subjects s ON s.id = a.subject_id`

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) QuerySubjects(ctx context.Context, userID string) ([]attendance.Subject, error) {
	var rows []subjectRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT id, user_id, name, created_at FROM subjects WHERE user_id = $1 ORDER BY lower(name)", userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]attendance.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, attendance.Subject(row))
	}
	return subjects, nil
}

func (repo attendanceRepository) GetSubject(ctx context.Context, userID, id string) (attendance.Subject, error) {
	if !validID(id) {
		return attendance.Subject{}, attendance.ErrSubjectNotFound
	}
	var row subjectRow
	err := repo.db.GetContext(ctx, &row,
		"SELECT id, user_id, name, created_at FROM subjects WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return attendance.Subject{}, trapNoRowsErr(err, attendance.ErrSubjectNotFound, "getting subject")
	}
	return attendance.Subject(row), nil
}

func (repo attendanceRepository) CreateSubject(ctx context.Context, s attendance.Subject) (attendance.Subject, error) {
	s.ID = uuid.New().String()
	s.CreatedAt = s.CreatedAt.UTC()
	_, err := repo.db.ExecContext(ctx,
		"INSERT INTO subjects (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)",
		s.ID, s.UserID, s.Name, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "subjects_user_name_key") {
			return attendance.Subject{}, attendance.ErrSubjectExists
		}
		return attendance.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return s, nil
}

func (repo attendanceRepository) DeleteSubject(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return attendance.ErrSubjectNotFound
	}
	res, err := repo.db.ExecContext(ctx, "DELETE FROM subjects WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return checkAffected(res, attendance.ErrSubjectNotFound, "deleting subject")
}

func (repo attendanceRepository) FindRecord(ctx context.Context, userID, subjectID string, date core.Date) (attendance.Record, bool, error) {
	var row recordRow
	err := repo.db.GetContext(ctx, &row,
		recordQuery+" WHERE a.user_id = $1 AND a.subject_id = $2 AND a.date = $3", userID, subjectID, date)
	switch errors.Cause(err) {
	case nil:
		return attendance.Record(row), true, nil
	case sql.ErrNoRows:
		return attendance.Record{}, false, nil
	default:
		return attendance.Record{}, false, errors.Wrap(err, "finding attendance record")
	}
}

// CreateRecord relies on the (user_id, subject_id, date) constraint to reject duplicates.
func (repo attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	rec.ID = uuid.New().String()
	rec.CreatedAt = rec.CreatedAt.UTC()
	_, err := repo.db.ExecContext(ctx,
		"INSERT INTO attendance (id, user_id, subject_id, date, present, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		rec.ID, rec.UserID, rec.SubjectID, rec.Date, rec.Present, rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "attendance_user_subject_date_key") {
			return attendance.Record{}, attendance.ErrAlreadyMarked
		}
		return attendance.Record{}, errors.Wrap(err, "inserting attendance record")
	}
	return rec, nil
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, userID string, filter *attendance.QueryFilter) ([]attendance.Record, error) {
	var w where
	w.add("a.user_id = $%d", userID)
	if filter != nil {
		if filter.SubjectID != "" {
			if !validID(filter.SubjectID) {
				return []attendance.Record{}, nil
			}
			w.add("a.subject_id = $%d", filter.SubjectID)
		}
		if !filter.FromDate.IsZero() {
			w.add("a.date >= $%d", filter.FromDate)
		}
		if !filter.ToDate.IsZero() {
			w.add("a.date <= $%d", filter.ToDate)
		}
	}

	var rows []recordRow
	if err := repo.db.SelectContext(ctx, &rows, recordQuery+w.String()+" ORDER BY a.date DESC, s.name", w.args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	records := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, attendance.Record(row))
	}
	return records, nil
}
