package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shubham414kumar/vidyasphere/core/document"
	"github.com/Shubham414kumar/vidyasphere/core/user"
)

func newNote(branch, semester, subject, title string) document.NewDocument {
	return document.NewDocument{
		Title:    title,
		Branch:   branch,
		Semester: semester,
		Subject:  subject,
		FileURL:  "http://localhost:8000/storage/v1/object/public/notes/u1/" + title + ".pdf",
	}
}

func seedNotes(t *testing.T, app *testApp, uploaderID string) []document.Document {
	t.Helper()
	ctx := context.Background()
	var docs []document.Document
	for _, nd := range []document.NewDocument{
		newNote("CSE", "1", "Maths", "Calculus"),
		newNote("CSE", "1", "Physics", "Optics"),
		newNote("CSE", "2", "DSA", "Graphs"),
		newNote("ME", "3", "Thermo", "Entropy"),
	} {
		doc, err := app.notes.Create(ctx, uploaderID, nd)
		require.NoError(t, err)
		docs = append(docs, doc)
	}
	return docs
}

func Test_documentApi_create(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Ravi", "ravi@test.in")
	token := app.token(t, usr)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "anonymous",
			method:   http.MethodPost,
			path:     "/v1/notes",
			body:     marshallObj(t, newNote("CSE", "1", "Maths", "Calculus")),
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "bad semester",
			method:   http.MethodPost,
			path:     "/v1/pyqs",
			body:     marshallObj(t, newNote("CSE", "13", "Maths", "Calculus")),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"semester": "semester must be a number between 1 and 12"}),
		},
	})

	rec := app.do(newAuthRequest(http.MethodPost, "/v1/pyqs", token, marshallObj(t, newNote("CSE", "1", "Maths", "Calculus"))))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var doc document.Document
	unmarshallObj(t, rec.Body.Bytes(), &doc)
	assert.Equal(t, document.KindPYQ, doc.Kind)
	assert.Equal(t, usr.ID, doc.UploadedBy)

	// notes and PYQs are kept apart
	rec = app.do(newRequest(http.MethodGet, "/v1/notes"))
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`[]`)}, rec)

	rec = app.do(newRequest(http.MethodGet, "/v1/pyqs/"+doc.ID))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_documentApi_query(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Ravi", "ravi@test.in")
	seedNotes(t, app, usr.ID)

	titles := func(path string) []string {
		rec := app.do(newRequest(http.MethodGet, path))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var docs []document.Document
		unmarshallObj(t, rec.Body.Bytes(), &docs)
		out := make([]string, 0, len(docs))
		for _, d := range docs {
			out = append(out, d.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Calculus", "Entropy", "Graphs", "Optics"}, titles("/v1/notes?ordering=title"))
	assert.Equal(t, []string{"Optics", "Calculus"}, titles("/v1/notes?branch=CSE&semester=1&ordering=-title"))
	assert.Equal(t, []string{"Entropy"}, titles("/v1/notes?search=thermo"))
	assert.Equal(t, []string{"Calculus", "Entropy"}, titles("/v1/notes?ordering=title&limit=2"))
}

func Test_documentApi_browse(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Ravi", "ravi@test.in")
	docs := seedNotes(t, app, usr.ID)

	tests := []httpTest{
		{
			name:     "branches",
			path:     "/v1/notes/browse",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, document.BrowseResult{
				Level:     document.LevelBranch,
				Options:   []document.Option{{Key: "CSE", Count: 3}, {Key: "ME", Count: 1}},
				Documents: []document.Document{},
			}),
		},
		{
			name:     "semesters of a branch",
			path:     "/v1/notes/browse?branch=CSE",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, document.BrowseResult{
				Level:     document.LevelSemester,
				Selection: document.Selection{Branch: "CSE"},
				Options:   []document.Option{{Key: "1", Count: 2}, {Key: "2", Count: 1}},
				Documents: []document.Document{},
			}),
		},
		{
			name:     "branch without documents",
			path:     "/v1/notes/browse?branch=EEE",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, document.BrowseResult{
				Level:     document.LevelSemester,
				Selection: document.Selection{Branch: "EEE"},
				Options:   []document.Option{},
				Documents: []document.Document{},
			}),
		},
		{
			name:     "subjects",
			path:     "/v1/notes/browse?branch=CSE&semester=1",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, document.BrowseResult{
				Level:     document.LevelSubject,
				Selection: document.Selection{Branch: "CSE", Semester: "1"},
				Options:   []document.Option{{Key: "Maths", Count: 1}, {Key: "Physics", Count: 1}},
				Documents: []document.Document{},
			}),
		},
		{
			name:     "documents",
			path:     "/v1/notes/browse?branch=CSE&semester=1&subject=Physics",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, document.BrowseResult{
				Level:     document.LevelDocument,
				Selection: document.Selection{Branch: "CSE", Semester: "1", Subject: "Physics"},
				Options:   []document.Option{},
				Documents: []document.Document{docs[1]},
			}),
		},
		{
			name:     "semester without branch",
			path:     "/v1/notes/browse?semester=1",
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"branch": "select a branch before a semester"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodGet
	}
	runHTTPTests(t, app, tests)
}

func Test_documentApi_destroy(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Ravi", "ravi@test.in")
	admin := app.createUser(t, "Admin", "admin@test.in", user.RoleAdmin)
	docs := seedNotes(t, app, usr.ID)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "not an admin",
			method:   http.MethodDelete,
			path:     "/v1/notes/" + docs[0].ID,
			token:    app.token(t, usr),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, errForbidden),
		},
		{
			name:     "admin",
			method:   http.MethodDelete,
			path:     "/v1/notes/" + docs[0].ID,
			token:    app.token(t, admin),
			wantCode: http.StatusNoContent,
		},
		{
			name:     "already deleted",
			method:   http.MethodDelete,
			path:     "/v1/notes/" + docs[0].ID,
			token:    app.token(t, admin),
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "document not found"}),
		},
	})
}

func Test_documentApi_counters(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Ravi", "ravi@test.in")
	doc := seedNotes(t, app, usr.ID)[2]

	for i := 0; i < 3; i++ {
		rec := app.do(newRequest(http.MethodPost, "/v1/notes/"+doc.ID+"/views"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec := app.do(newRequest(http.MethodPost, "/v1/notes/"+doc.ID+"/downloads"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got document.Document
	unmarshallObj(t, rec.Body.Bytes(), &got)
	assert.Equal(t, 3, got.ViewCount)
	assert.Equal(t, 1, got.DownloadCount)

	rec = app.do(newRequest(http.MethodPost, "/v1/notes/missing/views"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
