package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Shubham414kumar/vidyasphere/core"
)

type Subject struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type NewSubject struct {
	Name string `json:"name" validate:"required,max=120"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

// Record is one attendance mark. There is at most one per (user, subject, date).
type Record struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	SubjectID   string    `json:"subject_id"`
	SubjectName string    `json:"subject_name"`
	Date        core.Date `json:"date"`
	Present     bool      `json:"present"`
	CreatedAt   time.Time `json:"created_at"`
}

// MarkAttendance marks the user present or absent. Date defaults to today (UTC).
type MarkAttendance struct {
	SubjectID string    `json:"subject_id" validate:"required,uuid"`
	Date      core.Date `json:"date"`
	Present   bool      `json:"present"`
}

func (ma *MarkAttendance) Validate(validate *validator.Validate) error {
	ma.SubjectID = core.CleanString(ma.SubjectID, true /* lower */)
	return validate.Struct(ma)
}

type QueryFilter struct {
	SubjectID string `query:"subject_id"`
	From      string `query:"from"`
	To        string `query:"to"`

	FromDate core.Date `query:"-"`
	ToDate   core.Date `query:"-"`
}

// Clean parses the From and To query values. Unparseable dates are reported as field errors.
func (qf *QueryFilter) Clean() error {
	qf.SubjectID = core.CleanString(qf.SubjectID, true /* lower */)
	var flds []core.FieldError
	if s := core.CleanString(qf.From); s != "" {
		d, err := core.ParseDate(s)
		if err != nil {
			flds = append(flds, core.FieldError{Field: "from", Error: "date must be formatted as " + core.DateLayout})
		}
		qf.FromDate = d
	}
	if s := core.CleanString(qf.To); s != "" {
		d, err := core.ParseDate(s)
		if err != nil {
			flds = append(flds, core.FieldError{Field: "to", Error: "date must be formatted as " + core.DateLayout})
		}
		qf.ToDate = d
	}
	if flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (qf *QueryFilter) Matches(rec Record) bool {
	if qf.SubjectID != "" && rec.SubjectID != qf.SubjectID {
		return false
	}
	if !qf.FromDate.IsZero() && rec.Date.Before(qf.FromDate.Time) {
		return false
	}
	if !qf.ToDate.IsZero() && rec.Date.After(qf.ToDate.Time) {
		return false
	}
	return true
}
