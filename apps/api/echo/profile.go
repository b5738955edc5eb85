package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core/profile"
)

type profileApi struct {
	svc      profile.Service
	validate *validator.Validate
}

func registerProfileAPI(g *echo.Group, auth echo.MiddlewareFunc, svc profile.Service, validate *validator.Validate) {
	api := profileApi{svc: svc, validate: validate}

	pg := g.Group("/profile", auth)
	pg.GET("", api.retrieve)
	pg.PUT("", api.update)
}

func (api *profileApi) retrieve(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	prof, err := api.svc.Get(ctx.Request().Context(), sess.UserID)
	if err != nil {
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *profileApi) update(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	var data profile.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	prof, err := api.svc.Upsert(ctx.Request().Context(), sess.UserID, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, prof)
}
