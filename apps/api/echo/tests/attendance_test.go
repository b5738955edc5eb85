package tests

import (
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shubham414kumar/vidyasphere/core/attendance"
)

func Test_attendanceApi(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Ravi", "ravi@test.in")
	other := app.createUser(t, "Meera", "meera@test.in")
	token := app.token(t, usr)

	rec := app.do(newAuthRequest(http.MethodPost, "/v1/subjects", token, marshallObj(t, attendance.NewSubject{Name: " Maths "})))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var subj attendance.Subject
	unmarshallObj(t, rec.Body.Bytes(), &subj)
	assert.Equal(t, "Maths", subj.Name)

	mark := func(date string, present bool) []byte {
		return []byte(`{"subject_id":"` + subj.ID + `","date":"` + date + `","present":` + strconv.FormatBool(present) + `}`)
	}

	runHTTPTests(t, app, []httpTest{
		{
			name:     "anonymous",
			method:   http.MethodGet,
			path:     "/v1/attendance",
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "same subject twice",
			method:   http.MethodPost,
			path:     "/v1/subjects",
			body:     marshallObj(t, attendance.NewSubject{Name: "maths"}),
			token:    token,
			wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: attendance.ErrSubjectExists.Error()}),
		},
		{
			name:     "mark",
			method:   http.MethodPost,
			path:     "/v1/attendance",
			body:     mark("2024-01-15", true),
			token:    token,
			wantCode: http.StatusCreated,
		},
		{
			name:     "mark the same day again",
			method:   http.MethodPost,
			path:     "/v1/attendance",
			body:     mark("2024-01-15", false),
			token:    token,
			wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: attendance.ErrAlreadyMarked.Error()}),
		},
		{
			name:     "another day",
			method:   http.MethodPost,
			path:     "/v1/attendance",
			body:     mark("2024-01-16", false),
			token:    token,
			wantCode: http.StatusCreated,
		},
		{
			name:     "in the future",
			method:   http.MethodPost,
			path:     "/v1/attendance",
			body:     mark("2999-01-01", true),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"date": "attendance cannot be marked in the future"}),
		},
		{
			name:     "subject of another user",
			method:   http.MethodPost,
			path:     "/v1/attendance",
			body:     mark("2024-01-15", true),
			token:    app.token(t, other),
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "subject not found"}),
		},
		{
			name:     "bad date filter",
			method:   http.MethodGet,
			path:     "/v1/attendance?from=15-01-2024",
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"from": "date must be formatted as 2006-01-02"}),
		},
	})

	var records []attendance.Record
	rec = app.do(newAuthRequest(http.MethodGet, "/v1/attendance", token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshallObj(t, rec.Body.Bytes(), &records)
	assert.Len(t, records, 2)

	rec = app.do(newAuthRequest(http.MethodGet, "/v1/attendance?from=2024-01-16", token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshallObj(t, rec.Body.Bytes(), &records)
	require.Len(t, records, 1)
	assert.False(t, records[0].Present)

	rec = app.do(newAuthRequest(http.MethodGet, "/v1/attendance/stats", token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stats attendance.Stats
	unmarshallObj(t, rec.Body.Bytes(), &stats)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Present)
	assert.Equal(t, 50.0, stats.Percentage)
	require.Len(t, stats.Subjects, 1)
	assert.Equal(t, "Maths", stats.Subjects[0].SubjectName)

	// records are private to their owner
	rec = app.do(newAuthRequest(http.MethodGet, "/v1/attendance", app.token(t, other)))
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`[]`)}, rec)

	rec = app.do(newAuthRequest(http.MethodGet, "/v1/attendance/export", token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="attendance.xlsx"`, rec.Header().Get("Content-Disposition"))
	// xlsx files are zip archives
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}
