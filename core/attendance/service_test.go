package attendance_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/attendance"
	"github.com/Shubham414kumar/vidyasphere/storage/database/inmem"
)

type lineReporter struct{}

func (lineReporter) ContentType() string { return "text/plain" }
func (lineReporter) FileExt() string     { return ".txt" }

func (lineReporter) WriteAttendance(w io.Writer, records []attendance.Record, stats attendance.Stats) error {
	for _, r := range records {
		if _, err := fmt.Fprintf(w, "%s %s %t\n", r.Date, r.SubjectName, r.Present); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%.2f\n", stats.Percentage)
	return err
}

func setup(t *testing.T) (attendance.Service, attendance.Subject) {
	t.Helper()
	svc := attendance.NewService(inmemdb.NewAttendanceRepository(inmemdb.Open()), lineReporter{})
	subj, err := svc.CreateSubject(context.Background(), "u1", attendance.NewSubject{Name: "Physics"})
	require.NoError(t, err)
	return svc, subj
}

func TestSubjects(t *testing.T) {
	svc, physics := setup(t)
	ctx := context.Background()

	_, err := svc.CreateSubject(ctx, "u1", attendance.NewSubject{Name: "PHYSICS"})
	assert.Equal(t, attendance.ErrSubjectExists, errors.Cause(err))

	// names are unique per user only
	_, err = svc.CreateSubject(ctx, "u2", attendance.NewSubject{Name: "Physics"})
	require.NoError(t, err)

	_, err = svc.CreateSubject(ctx, "u1", attendance.NewSubject{Name: "chemistry"})
	require.NoError(t, err)

	subjects, err := svc.ListSubjects(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "chemistry", subjects[0].Name)
	assert.Equal(t, "Physics", subjects[1].Name)

	assert.Equal(t, attendance.ErrSubjectNotFound, errors.Cause(svc.DeleteSubject(ctx, "u2", physics.ID)))
	require.NoError(t, svc.DeleteSubject(ctx, "u1", physics.ID))
}

func TestMark(t *testing.T) {
	svc, physics := setup(t)
	ctx := context.Background()
	today := core.Today()
	yesterday := core.NewDate(today.AddDate(0, 0, -1))
	tomorrow := core.NewDate(today.AddDate(0, 0, 1))

	rec, err := svc.Mark(ctx, "u1", attendance.MarkAttendance{SubjectID: physics.ID, Present: true})
	require.NoError(t, err)
	assert.True(t, rec.Date.Equal(today))
	assert.Equal(t, "Physics", rec.SubjectName)

	tests := []struct {
		name    string
		userID  string
		mark    attendance.MarkAttendance
		wantErr error
	}{
		{name: "same day again", userID: "u1", mark: attendance.MarkAttendance{SubjectID: physics.ID, Date: today}, wantErr: attendance.ErrAlreadyMarked},
		{name: "same day, other value", userID: "u1", mark: attendance.MarkAttendance{SubjectID: physics.ID, Present: true}, wantErr: attendance.ErrAlreadyMarked},
		{name: "future", userID: "u1", mark: attendance.MarkAttendance{SubjectID: physics.ID, Date: tomorrow}, wantErr: attendance.ErrFutureDate},
		{name: "other user's subject", userID: "u2", mark: attendance.MarkAttendance{SubjectID: physics.ID}, wantErr: attendance.ErrSubjectNotFound},
		{name: "past day", userID: "u1", mark: attendance.MarkAttendance{SubjectID: physics.ID, Date: yesterday}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Mark(ctx, tt.userID, tt.mark)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			assert.NoError(t, err)
		})
	}

	// the duplicates left no extra rows
	records, err := svc.Records(ctx, "u1", nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Date.Equal(today))
	assert.True(t, records[1].Date.Equal(yesterday))

	filter := &attendance.QueryFilter{From: today.String()}
	require.NoError(t, filter.Clean())
	records, err = svc.Records(ctx, "u1", filter)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	stats, err := svc.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Present)
	assert.Equal(t, 50.0, stats.Percentage)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, "u1", &buf))
	assert.Equal(t, fmt.Sprintf("%s Physics true\n%s Physics false\n50.00\n", today, yesterday), buf.String())
}

func TestDeleteSubjectRemovesRecords(t *testing.T) {
	svc, physics := setup(t)
	ctx := context.Background()
	_, err := svc.Mark(ctx, "u1", attendance.MarkAttendance{SubjectID: physics.ID, Present: true})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSubject(ctx, "u1", physics.ID))
	records, err := svc.Records(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}
