package echoapi

import (
	"bytes"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core/attendance"
)

type attendanceApi struct {
	svc      attendance.Service
	validate *validator.Validate
}

// registerAttendanceAPI exposes the subjects and records of the signed-in user only.
func registerAttendanceAPI(g *echo.Group, auth echo.MiddlewareFunc, svc attendance.Service, validate *validator.Validate) {
	api := attendanceApi{svc: svc, validate: validate}

	sg := g.Group("/subjects", auth)
	sg.GET("", api.querySubjects)
	sg.POST("", api.createSubject)
	sg.DELETE("/:id", api.destroySubject)

	ag := g.Group("/attendance", auth)
	ag.GET("", api.queryRecords)
	ag.POST("", api.mark)
	ag.GET("/stats", api.stats)
	ag.GET("/export", api.export)
}

func (api *attendanceApi) querySubjects(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	subjects, err := api.svc.ListSubjects(ctx.Request().Context(), sess.UserID)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []attendance.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *attendanceApi) createSubject(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	var data attendance.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	subj, err := api.svc.CreateSubject(ctx.Request().Context(), sess.UserID, data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, subj)
}

func (api *attendanceApi) destroySubject(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteSubject(ctx.Request().Context(), sess.UserID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceApi) queryRecords(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	if err := filter.Clean(); err != nil {
		return err
	}

	records, err := api.svc.Records(ctx.Request().Context(), sess.UserID, filter)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	var data attendance.MarkAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.Mark(ctx.Request().Context(), sess.UserID, data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) stats(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	stats, err := api.svc.Stats(ctx.Request().Context(), sess.UserID)
	if err != nil {
		return errors.Wrap(err, "computing attendance stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *attendanceApi) export(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	// buffered so that a failed export still gets a JSON error
	var buf bytes.Buffer
	if err := api.svc.Export(ctx.Request().Context(), sess.UserID, &buf); err != nil {
		return errors.Wrap(err, "exporting attendance")
	}

	reporter := api.svc.Reporter()
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="attendance`+reporter.FileExt()+`"`)
	return ctx.Blob(http.StatusOK, reporter.ContentType(), buf.Bytes())
}
