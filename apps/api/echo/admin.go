package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core/dashboard"
	"github.com/Shubham414kumar/vidyasphere/core/document"
	"github.com/Shubham414kumar/vidyasphere/core/user"
)

type adminApi struct {
	userSvc      user.Service
	noteSvc      document.Service
	dashboardSvc dashboard.Service
	validate     *validator.Validate
}

// registerAdminAPI expects g to be guarded by the admin role already.
func registerAdminAPI(g *echo.Group, opts *Options) {
	api := adminApi{
		userSvc:      opts.UserSvc,
		noteSvc:      opts.NoteSvc,
		dashboardSvc: opts.DashboardSvc,
		validate:     opts.Validate,
	}

	g.GET("/stats", api.stats)
	g.GET("/notes/recent", api.recentNotes)
	g.GET("/roles", api.queryRoles)
	g.POST("/roles", api.assignRole)
	g.DELETE("/roles/:id", api.removeRole)
}

func (api *adminApi) stats(ctx echo.Context) error {
	stats, err := api.dashboardSvc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *adminApi) recentNotes(ctx echo.Context) error {
	docs, err := api.noteSvc.Recent(ctx.Request().Context(), bindLimit(ctx))
	if err != nil {
		return errors.Wrap(err, "querying recent notes")
	}
	if docs == nil {
		docs = []document.Document{}
	}
	return ctx.JSON(http.StatusOK, docs)
}

func (api *adminApi) queryRoles(ctx echo.Context) error {
	roles, err := api.userSvc.ListRoles(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying roles")
	}
	if roles == nil {
		roles = []user.RoleAssignment{}
	}
	return ctx.JSON(http.StatusOK, roles)
}

func (api *adminApi) assignRole(ctx echo.Context) error {
	var data user.AssignRole
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignRole")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ra, err := api.userSvc.AssignRole(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "assigning role")
	}
	return ctx.JSON(http.StatusCreated, ra)
}

func (api *adminApi) removeRole(ctx echo.Context) error {
	if err := api.userSvc.RemoveRole(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing role")
	}
	return ctx.NoContent(http.StatusNoContent)
}
