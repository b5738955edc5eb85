package echoapi

import (
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
)

const uploadField = "file"

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

	errObjectNotFound = echo.NewHTTPError(http.StatusNotFound, core.ErrObjectNotFound.Error())
	errFileTooLarge   = echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file is too large")
	errMissingFile    = core.NewValidationError(nil, core.FieldError{Field: uploadField, Error: "this field is required"})
)

type storageApi struct {
	objects   core.ObjectStore
	validate  *validator.Validate
	publicURL string
	maxSize   int64
}

func registerStorageAPI(e *echo.Echo, auth echo.MiddlewareFunc, opts *Options) {
	api := storageApi{
		objects:   opts.Objects,
		validate:  opts.Validate,
		publicURL: opts.Conf.Server.PublicBaseURL,
		maxSize:   opts.Conf.Storage.MaxUploadSize,
	}

	e.POST("/v1/storage/:bucket", api.upload, auth)
	e.DELETE("/v1/storage/:bucket/*", api.destroy, auth)
	e.GET("/storage/v1/object/public/:bucket/*", api.serve)
}

// sanitizeFilename keeps the base name of an uploaded file with anything unusual replaced by dashes.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Trim(unsafeFilenameChars.ReplaceAllString(name, "-"), "-.")
	if name == "" {
		return "file"
	}
	return name
}

func (api *storageApi) upload(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	bucket := ctx.Param("bucket")
	if err := api.validate.Var(bucket, "required,slug"); err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "bucket", Error: core.ErrInvalidObjectRef.Error()})
	}

	fh, err := ctx.FormFile(uploadField)
	if err != nil {
		if errors.Cause(err) == http.ErrMissingFile {
			return errMissingFile
		}
		return errors.Wrap(err, "reading multipart file")
	}
	if fh.Size > api.maxSize {
		return errFileTooLarge
	}

	// the client's part header is ignored: only known document types keep their own
	name := sanitizeFilename(fh.Filename)
	contentType := contentTypeFor(name)

	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening multipart file")
	}
	defer func() { _ = f.Close() }()

	key := sess.UserID + "/" + uuid.New().String() + "-" + name
	info, err := api.objects.Put(ctx.Request().Context(), bucket, key, f, fh.Size, contentType)
	if err != nil {
		return errors.Wrap(err, "storing object")
	}

	return ctx.JSON(http.StatusCreated, UploadResponse{
		Bucket:      info.Bucket,
		Key:         info.Key,
		Size:        info.Size,
		ContentType: info.ContentType,
		PublicURL:   core.PublicObjectURL(api.publicURL, info.Bucket, info.Key),
	})
}

// objectRef reads the bucket and the key of the object a request points at.
func objectRef(ctx echo.Context) (bucket, key string, err error) {
	if bucket, err = url.PathUnescape(ctx.Param("bucket")); err != nil {
		return "", "", errObjectNotFound
	}
	key, err = url.PathUnescape(ctx.Param("*"))
	if err != nil || bucket == "" || key == "" {
		return "", "", errObjectNotFound
	}
	return bucket, key, nil
}

// destroy removes an uploaded file. Users delete their own files, admins any.
func (api *storageApi) destroy(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	bucket, key, err := objectRef(ctx)
	if err != nil {
		return err
	}
	owned := path.Clean(key) == key && strings.HasPrefix(key, sess.UserID+"/")
	if !owned && !sess.IsAdmin() {
		return errHttpForbidden
	}

	if err := api.objects.Delete(ctx.Request().Context(), bucket, key); err != nil {
		if errors.Cause(err) == core.ErrObjectNotFound {
			return errObjectNotFound
		}
		return errors.Wrap(err, "deleting object")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *storageApi) serve(ctx echo.Context) error {
	bucket, key, err := objectRef(ctx)
	if err != nil {
		return err
	}

	rc, info, err := api.objects.Get(ctx.Request().Context(), bucket, key)
	if err != nil {
		if errors.Cause(err) == core.ErrObjectNotFound {
			return errObjectNotFound
		}
		return errors.Wrap(err, "getting object")
	}
	defer func() { _ = rc.Close() }()

	header := ctx.Response().Header()
	header.Set("Cache-Control", "public, max-age=3600")
	if info.Size > 0 {
		header.Set(echo.HeaderContentLength, strconv.FormatInt(info.Size, 10))
	}
	if !info.UpdatedAt.IsZero() {
		header.Set(echo.HeaderLastModified, info.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	// objects outside the known document types are never rendered from our origin
	contentType := contentTypeFor(key)
	header.Set("X-Content-Type-Options", "nosniff")
	if contentType == echo.MIMEOctetStream {
		header.Set(echo.HeaderContentDisposition, contentDisposition("attachment", core.ObjectFilename(key)))
	}
	return ctx.Stream(http.StatusOK, contentType, rc)
}

type UploadResponse struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	PublicURL   string `json:"public_url"`
}
