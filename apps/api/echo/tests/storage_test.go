package tests

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/Shubham414kumar/vidyasphere/apps/api/echo"
	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/user"
)

func newUploadRequest(t *testing.T, path, token, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func Test_storageApi_upload(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Ravi", "ravi@test.in")
	token := app.token(t, usr)
	content := []byte("%PDF-1.4 calculus notes")

	tests := []struct {
		name     string
		path     string
		token    string
		filename string
		content  []byte
		wantCode int
		wantData []byte
	}{
		{
			name:     "anonymous",
			path:     "/v1/storage/notes",
			filename: "calculus.pdf",
			content:  content,
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "bad bucket",
			path:     "/v1/storage/Notes_2024",
			token:    token,
			filename: "calculus.pdf",
			content:  content,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"bucket": "Invalid bucket or path"}),
		},
		{
			name:     "no file",
			path:     "/v1/storage/notes",
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"file": "this field is required"}),
		},
		{
			name:     "too large",
			path:     "/v1/storage/notes",
			token:    token,
			filename: "big.pdf",
			content:  bytes.Repeat([]byte("a"), int(app.conf.Storage.MaxUploadSize)+1),
			wantCode: http.StatusRequestEntityTooLarge,
			wantData: marshallObj(t, httpErr{Error: "file is too large"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(newUploadRequest(t, tt.path, tt.token, tt.filename, tt.content))
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)
		})
	}

	rec := app.do(newUploadRequest(t, "/v1/storage/notes", token, `..\My Calculus (v2).pdf`, content))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp UploadResponse
	unmarshallObj(t, rec.Body.Bytes(), &resp)
	assert.Equal(t, "notes", resp.Bucket)
	assert.True(t, strings.HasPrefix(resp.Key, usr.ID+"/"), resp.Key)
	assert.True(t, strings.HasSuffix(resp.Key, "-My-Calculus-v2-.pdf"), resp.Key)
	assert.Equal(t, int64(len(content)), resp.Size)
	assert.Equal(t, "application/pdf", resp.ContentType)
	assert.True(t, strings.HasPrefix(resp.PublicURL, "http://localhost:8000/storage/v1/object/public/notes/"), resp.PublicURL)

	rc, info, err := app.objects.Get(context.Background(), "notes", resp.Key)
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, stored)
	assert.Equal(t, "application/pdf", info.ContentType)
}

func Test_storageApi_serve(t *testing.T) {
	app := setup(t)
	content := []byte("%PDF-1.4 optics")
	_, err := app.objects.Put(context.Background(), "notes", "u1/optics notes.pdf", bytes.NewReader(content), int64(len(content)), "application/pdf")
	require.NoError(t, err)

	rec := app.do(newRequest(http.MethodGet, "/storage/v1/object/public/notes/u1/optics%20notes.pdf"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, content, rec.Body.Bytes())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Header().Get("Last-Modified"))

	rec = app.do(newRequest(http.MethodGet, "/storage/v1/object/public/notes/u1/missing.pdf"))
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marshallObj(t, httpErr{Error: "Object not found"}),
	}, rec)
}

func Test_storageApi_untrustedContentType(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Ravi", "ravi@test.in")
	page := []byte("<html><script>alert(document.cookie)</script></html>")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="notes.html"`)
	hdr.Set("Content-Type", "text/html")
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(page)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/v1/storage/notes", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+app.token(t, usr))

	rec := app.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp UploadResponse
	unmarshallObj(t, rec.Body.Bytes(), &resp)
	assert.Equal(t, "application/octet-stream", resp.ContentType)

	// stored by other means with a renderable type
	_, err = app.objects.Put(context.Background(), "notes", "u1/index.html", bytes.NewReader(page), int64(len(page)), "text/html")
	require.NoError(t, err)

	for _, key := range []string{resp.Key, "u1/index.html"} {
		t.Run(key, func(t *testing.T) {
			rec := app.do(newRequest(http.MethodGet, "/storage/v1/object/public/notes/"+key))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment; "),
				rec.Header().Get("Content-Disposition"))
		})
	}
}

func Test_storageApi_destroy(t *testing.T) {
	app := setup(t)
	owner := app.createUser(t, "Ravi", "ravi@test.in")
	other := app.createUser(t, "Meera", "meera@test.in")
	admin := app.createUser(t, "Admin", "admin@test.in", user.RoleAdmin)

	put := func(key string) {
		content := []byte("%PDF-1.4")
		_, err := app.objects.Put(context.Background(), "notes", key, bytes.NewReader(content), int64(len(content)), "application/pdf")
		require.NoError(t, err)
	}
	ownKey := owner.ID + "/a-optics.pdf"
	put(ownKey)
	put(owner.ID + "/b-waves.pdf")
	put(other.ID + "/c-sneaky.pdf")

	runHTTPTests(t, app, []httpTest{
		{
			name:     "anonymous",
			method:   http.MethodDelete,
			path:     "/v1/storage/notes/" + ownKey,
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "someone else's file",
			method:   http.MethodDelete,
			path:     "/v1/storage/notes/" + ownKey,
			token:    app.token(t, other),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, errForbidden),
		},
		{
			name:     "escaping the user folder",
			method:   http.MethodDelete,
			path:     "/v1/storage/notes/" + owner.ID + "/../" + other.ID + "/c-sneaky.pdf",
			token:    app.token(t, owner),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, errForbidden),
		},
		{
			name:     "own file",
			method:   http.MethodDelete,
			path:     "/v1/storage/notes/" + ownKey,
			token:    app.token(t, owner),
			wantCode: http.StatusNoContent,
		},
		{
			name:     "already deleted",
			method:   http.MethodDelete,
			path:     "/v1/storage/notes/" + ownKey,
			token:    app.token(t, owner),
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "Object not found"}),
		},
		{
			name:     "admin deletes any file",
			method:   http.MethodDelete,
			path:     "/v1/storage/notes/" + owner.ID + "/b-waves.pdf",
			token:    app.token(t, admin),
			wantCode: http.StatusNoContent,
		},
	})

	_, _, err := app.objects.Get(context.Background(), "notes", ownKey)
	assert.Equal(t, core.ErrObjectNotFound, err)
	rc, _, err := app.objects.Get(context.Background(), "notes", other.ID+"/c-sneaky.pdf")
	require.NoError(t, err)
	rc.Close()
}
