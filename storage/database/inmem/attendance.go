package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) QuerySubjects(_ context.Context, userID string) ([]attendance.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subjects := make([]attendance.Subject, 0)
	for _, s := range repo.db.subjects {
		if s.UserID == userID {
			subjects = append(subjects, *s)
		}
	}
	sort.Slice(subjects, func(i, j int) bool {
		return strings.ToLower(subjects[i].Name) < strings.ToLower(subjects[j].Name)
	})
	return subjects, nil
}

func (repo *attendanceRepository) GetSubject(_ context.Context, userID, id string) (attendance.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.subjects[id]; ok && s.UserID == userID {
		return *s, nil
	}
	return attendance.Subject{}, attendance.ErrSubjectNotFound
}

func (repo *attendanceRepository) CreateSubject(_ context.Context, s attendance.Subject) (attendance.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.subjects {
		if other.UserID == s.UserID && strings.EqualFold(other.Name, s.Name) {
			return attendance.Subject{}, attendance.ErrSubjectExists
		}
	}
	s.ID = newID()
	repo.db.subjects[s.ID] = &s
	return s, nil
}

// DeleteSubject cascades to the subject's attendance records.
func (repo *attendanceRepository) DeleteSubject(_ context.Context, userID, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if s, ok := repo.db.subjects[id]; !ok || s.UserID != userID {
		return attendance.ErrSubjectNotFound
	}
	delete(repo.db.subjects, id)
	for rid, rec := range repo.db.records {
		if rec.SubjectID == id {
			delete(repo.db.records, rid)
		}
	}
	return nil
}

// record joins rec with its subject name. The lock must be held.
func (repo *attendanceRepository) record(rec *attendance.Record) attendance.Record {
	r := *rec
	if s, ok := repo.db.subjects[r.SubjectID]; ok {
		r.SubjectName = s.Name
	}
	return r
}

func (repo *attendanceRepository) findRecord(userID, subjectID string, date core.Date) (*attendance.Record, bool) {
	for _, rec := range repo.db.records {
		if rec.UserID == userID && rec.SubjectID == subjectID && rec.Date.Equal(date) {
			return rec, true
		}
	}
	return nil, false
}

func (repo *attendanceRepository) FindRecord(_ context.Context, userID, subjectID string, date core.Date) (attendance.Record, bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.findRecord(userID, subjectID, date); ok {
		return repo.record(rec), true, nil
	}
	return attendance.Record{}, false, nil
}

func (repo *attendanceRepository) CreateRecord(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.findRecord(rec.UserID, rec.SubjectID, rec.Date); ok {
		return attendance.Record{}, attendance.ErrAlreadyMarked
	}
	rec.ID = newID()
	repo.db.records[rec.ID] = &rec
	return repo.record(&rec), nil
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, userID string, filter *attendance.QueryFilter) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]attendance.Record, 0)
	for _, rec := range repo.db.records {
		if rec.UserID != userID {
			continue
		}
		r := repo.record(rec)
		if filter == nil || filter.Matches(r) {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date.Time)
		}
		return records[i].SubjectName < records[j].SubjectName
	})
	return records, nil
}
