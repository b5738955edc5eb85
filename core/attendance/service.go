package attendance

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
)

var (
	ErrSubjectNotFound = core.NewNotFoundError("subject")
	ErrSubjectExists   = core.NewConflictError("a subject with this name already exists")
	ErrAlreadyMarked   = core.NewConflictError("attendance already marked for this subject on this date")
	ErrFutureDate      = core.NewValidationError(
		errors.New("attendance cannot be marked in the future"),
		core.FieldError{Field: "date", Error: "attendance cannot be marked in the future"},
	)
)

type (
	Repository interface {
		QuerySubjects(ctx context.Context, userID string) ([]Subject, error)
		GetSubject(ctx context.Context, userID, id string) (Subject, error)
		// CreateSubject fails with ErrSubjectExists when the user has a subject of the same name, ignoring case.
		CreateSubject(ctx context.Context, s Subject) (Subject, error)
		DeleteSubject(ctx context.Context, userID, id string) error

		// FindRecord reports whether the user already has a record for the subject on that date.
		FindRecord(ctx context.Context, userID, subjectID string, date core.Date) (Record, bool, error)
		// CreateRecord fails with ErrAlreadyMarked on a (user, subject, date) duplicate.
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		QueryRecords(ctx context.Context, userID string, filter *QueryFilter) ([]Record, error)
	}

	// Reporter writes attendance records as a downloadable document.
	Reporter interface {
		ContentType() string
		FileExt() string
		WriteAttendance(w io.Writer, records []Record, stats Stats) error
	}

	Service interface {
		ListSubjects(ctx context.Context, userID string) ([]Subject, error)
		CreateSubject(ctx context.Context, userID string, ns NewSubject) (Subject, error)
		DeleteSubject(ctx context.Context, userID, id string) error
		Mark(ctx context.Context, userID string, ma MarkAttendance) (Record, error)
		Records(ctx context.Context, userID string, filter *QueryFilter) ([]Record, error)
		Stats(ctx context.Context, userID string) (Stats, error)
		Export(ctx context.Context, userID string, w io.Writer) error
		Reporter() Reporter
	}

	service struct {
		repo     Repository
		reporter Reporter
		today    func() core.Date // mockable
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, reporter Reporter) Service {
	return &service{repo: repo, reporter: reporter, today: core.Today}
}

func (svc *service) ListSubjects(ctx context.Context, userID string) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, userID)
}

func (svc *service) CreateSubject(ctx context.Context, userID string, ns NewSubject) (Subject, error) {
	return svc.repo.CreateSubject(ctx, Subject{
		UserID:    userID,
		Name:      ns.Name,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *service) DeleteSubject(ctx context.Context, userID, id string) error {
	return svc.repo.DeleteSubject(ctx, userID, id)
}

// Mark records attendance once per (user, subject, date).
// The existence check gives a clean error; the unique constraint covers concurrent marks.
func (svc *service) Mark(ctx context.Context, userID string, ma MarkAttendance) (Record, error) {
	subj, err := svc.repo.GetSubject(ctx, userID, ma.SubjectID)
	if err != nil {
		return Record{}, err
	}

	today := svc.today()
	date := ma.Date
	if date.IsZero() {
		date = today
	}
	if date.After(today.Time) {
		return Record{}, ErrFutureDate
	}

	if _, found, err := svc.repo.FindRecord(ctx, userID, subj.ID, date); err != nil {
		return Record{}, errors.Wrap(err, "finding attendance record")
	} else if found {
		return Record{}, ErrAlreadyMarked
	}

	return svc.repo.CreateRecord(ctx, Record{
		UserID:      userID,
		SubjectID:   subj.ID,
		SubjectName: subj.Name,
		Date:        date,
		Present:     ma.Present,
		CreatedAt:   time.Now().UTC(),
	})
}

func (svc *service) Records(ctx context.Context, userID string, filter *QueryFilter) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, userID, filter)
}

func (svc *service) Stats(ctx context.Context, userID string) (Stats, error) {
	records, err := svc.repo.QueryRecords(ctx, userID, nil)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying attendance records")
	}
	return ComputeStats(records), nil
}

func (svc *service) Export(ctx context.Context, userID string, w io.Writer) error {
	records, err := svc.repo.QueryRecords(ctx, userID, nil)
	if err != nil {
		return errors.Wrap(err, "querying attendance records")
	}
	return svc.reporter.WriteAttendance(w, records, ComputeStats(records))
}

func (svc *service) Reporter() Reporter { return svc.reporter }
