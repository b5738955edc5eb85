package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shubham414kumar/vidyasphere/core/dashboard"
	"github.com/Shubham414kumar/vidyasphere/core/document"
	"github.com/Shubham414kumar/vidyasphere/core/user"
)

func Test_adminApi_stats(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Ravi", "ravi@test.in")
	admin := app.createUser(t, "Admin", "admin@test.in", user.RoleAdmin)
	seedNotes(t, app, usr.ID)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "anonymous",
			method:   http.MethodGet,
			path:     "/v1/admin/stats",
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "not an admin",
			method:   http.MethodGet,
			path:     "/v1/admin/stats",
			token:    app.token(t, usr),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, errForbidden),
		},
		{
			name:     "admin",
			method:   http.MethodGet,
			path:     "/v1/admin/stats",
			token:    app.token(t, admin),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, dashboard.Stats{Users: 2, Notes: 4}),
		},
	})

	rec := app.do(newAuthRequest(http.MethodGet, "/v1/admin/notes/recent?limit=2", app.token(t, admin)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var docs []document.Document
	unmarshallObj(t, rec.Body.Bytes(), &docs)
	assert.Len(t, docs, 2)
}

func Test_adminApi_roles(t *testing.T) {
	app := setup(t)
	app.createUser(t, "Ravi", "ravi@test.in")
	admin := app.createUser(t, "Admin", "admin@test.in", user.RoleAdmin)
	token := app.token(t, admin)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "unknown role",
			method:   http.MethodPost,
			path:     "/v1/admin/roles",
			body:     marshallObj(t, user.AssignRole{Email: "ravi@test.in", Role: "wizard"}),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"role": "invalid role"}),
		},
		{
			name:     "unknown user",
			method:   http.MethodPost,
			path:     "/v1/admin/roles",
			body:     marshallObj(t, user.AssignRole{Email: "who@test.in", Role: user.RoleModerator}),
			token:    token,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "role already held",
			method:   http.MethodPost,
			path:     "/v1/admin/roles",
			body:     marshallObj(t, user.AssignRole{Email: "ravi@test.in", Role: user.RoleUser}),
			token:    token,
			wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: user.ErrRoleExists.Error()}),
		},
	})

	rec := app.do(newAuthRequest(http.MethodPost, "/v1/admin/roles", token,
		marshallObj(t, user.AssignRole{Email: " Ravi@test.in", Role: user.RoleModerator})))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ra user.RoleAssignment
	unmarshallObj(t, rec.Body.Bytes(), &ra)
	assert.Equal(t, user.RoleModerator, ra.Role)
	assert.Equal(t, "ravi@test.in", ra.Email)

	rec = app.do(newAuthRequest(http.MethodGet, "/v1/admin/roles", token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var roles []user.RoleAssignment
	unmarshallObj(t, rec.Body.Bytes(), &roles)
	assert.Len(t, roles, 3)

	rec = app.do(newAuthRequest(http.MethodDelete, "/v1/admin/roles/"+ra.ID, token))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.do(newAuthRequest(http.MethodDelete, "/v1/admin/roles/"+ra.ID, token))
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marshallObj(t, httpErr{Error: "role not found"}),
	}, rec)
}
