package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shubham414kumar/vidyasphere/core/batch"
	"github.com/Shubham414kumar/vidyasphere/core/user"
)

func Test_batchApi(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Ravi", "ravi@test.in")
	other := app.createUser(t, "Meera", "meera@test.in")
	late := app.createUser(t, "Kiran", "kiran@test.in")
	admin := app.createUser(t, "Admin", "admin@test.in", user.RoleAdmin)
	adminToken := app.token(t, admin)

	newBatch := marshallObj(t, batch.NewBatch{Name: "NEET Foundation", Price: 1500, MaxStudents: 2})

	runHTTPTests(t, app, []httpTest{
		{
			name:     "create as user",
			method:   http.MethodPost,
			path:     "/v1/batches",
			body:     newBatch,
			token:    app.token(t, usr),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, errForbidden),
		},
		{
			name:     "create without capacity",
			method:   http.MethodPost,
			path:     "/v1/batches",
			body:     marshallObj(t, batch.NewBatch{Name: "Empty"}),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"max_students": "this field is required"}),
		},
	})

	rec := app.do(newAuthRequest(http.MethodPost, "/v1/batches", adminToken, newBatch))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var b batch.Batch
	unmarshallObj(t, rec.Body.Bytes(), &b)
	assert.Equal(t, 0, b.CurrentStudents)

	joinPath := "/v1/batches/" + b.ID + "/join"
	runHTTPTests(t, app, []httpTest{
		{
			name:     "join anonymously",
			method:   http.MethodPost,
			path:     joinPath,
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "join",
			method:   http.MethodPost,
			path:     joinPath,
			token:    app.token(t, usr),
			wantCode: http.StatusCreated,
		},
		{
			name:     "join twice",
			method:   http.MethodPost,
			path:     joinPath,
			token:    app.token(t, usr),
			wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: batch.ErrAlreadyEnrolled.Error()}),
		},
		{
			name:     "last seat",
			method:   http.MethodPost,
			path:     joinPath,
			token:    app.token(t, other),
			wantCode: http.StatusCreated,
		},
		{
			name:     "join a full batch",
			method:   http.MethodPost,
			path:     joinPath,
			token:    app.token(t, late),
			wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: batch.ErrBatchFull.Error()}),
		},
		{
			name:     "join an unknown batch",
			method:   http.MethodPost,
			path:     "/v1/batches/unknown/join",
			token:    app.token(t, usr),
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "batch not found"}),
		},
	})

	got, err := app.batches.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentStudents)

	rec = app.do(newRequest(http.MethodGet, "/v1/batches"))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []batch.Batch
	unmarshallObj(t, rec.Body.Bytes(), &list)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].CurrentStudents)

	rec = app.do(newAuthRequest(http.MethodDelete, "/v1/batches/"+b.ID, adminToken))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.do(newRequest(http.MethodGet, "/v1/batches/"+b.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
