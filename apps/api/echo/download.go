package echoapi

import (
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Shubham414kumar/vidyasphere/core"
)

const (
	modeDownload = "download"

	errMissingFileURL   = "Missing file_url"
	errUnexpectedDetail = "Unexpected error"
)

var (
	edgeCORSHeaders = map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
	}

	contentTypes = map[string]string{
		".pdf":  "application/pdf",
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".webp": "image/webp",
	}
)

func contentTypeFor(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(filename))]; ok {
		return ct
	}
	return echo.MIMEOctetStream
}

func contentDisposition(disposition, filename string) string {
	return disposition + `; filename="` + strings.ReplaceAll(filename, `"`, "") + `"`
}

// downloadProxy streams a stored note given its public URL, inline or as an attachment.
// It answers browsers directly, so every response carries permissive CORS headers.
type downloadProxy struct {
	objects core.ObjectStore
}

func registerDownloadProxy(e *echo.Echo, objects core.ObjectStore) {
	p := downloadProxy{objects: objects}
	e.Any("/functions/v1/download-note", p.serve)
}

func edgeError(ctx echo.Context, code int, msg string) error {
	return ctx.JSON(code, echo.Map{"error": msg})
}

func (p downloadProxy) serve(ctx echo.Context) (err error) {
	header := ctx.Response().Header()
	for k, v := range edgeCORSHeaders {
		header.Set(k, v)
	}
	defer func() {
		if r := recover(); r != nil && !ctx.Response().Committed {
			err = edgeError(ctx, http.StatusInternalServerError, errUnexpectedDetail)
		}
	}()

	if ctx.Request().Method == http.MethodOptions {
		return ctx.NoContent(http.StatusOK)
	}

	fileURL := ctx.QueryParam("file_url")
	if fileURL == "" {
		return edgeError(ctx, http.StatusBadRequest, errMissingFileURL)
	}
	bucket, key, err := core.ParsePublicObjectURL(fileURL)
	if err != nil {
		return edgeError(ctx, http.StatusBadRequest, err.Error())
	}

	rc, _, err := p.objects.Get(ctx.Request().Context(), bucket, key)
	if err != nil {
		return edgeError(ctx, http.StatusBadRequest, err.Error())
	}
	defer func() { _ = rc.Close() }()

	name := core.ObjectFilename(key)
	disposition := "inline"
	if ctx.QueryParam("mode") == modeDownload {
		disposition = "attachment"
	}
	header.Set(echo.HeaderContentDisposition, contentDisposition(disposition, name))
	return ctx.Stream(http.StatusOK, contentTypeFor(name), rc)
}
