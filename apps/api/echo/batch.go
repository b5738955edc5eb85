package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core/batch"
)

type batchApi struct {
	svc      batch.Service
	validate *validator.Validate
}

func registerBatchAPI(g *echo.Group, auth, admin echo.MiddlewareFunc, svc batch.Service, validate *validator.Validate) {
	api := batchApi{svc: svc, validate: validate}

	bg := g.Group("/batches")
	bg.GET("", api.query)
	bg.GET("/:id", api.retrieve)
	bg.POST("/:id/join", api.join, auth)

	bg.POST("", api.create, auth, admin)
	bg.PUT("/:id", api.update, auth, admin)
	bg.DELETE("/:id", api.destroy, auth, admin)
}

func (api *batchApi) query(ctx echo.Context) error {
	filter := new(batch.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []batch.Batch{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	batches, err := api.svc.List(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying batches")
	}
	if batches == nil {
		batches = []batch.Batch{}
	}
	return ctx.JSON(http.StatusOK, batches)
}

func (api *batchApi) retrieve(ctx echo.Context) error {
	b, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting batch")
	}
	return ctx.JSON(http.StatusOK, b)
}

func (api *batchApi) create(ctx echo.Context) error {
	var data batch.NewBatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBatch")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	b, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating batch")
	}
	return ctx.JSON(http.StatusCreated, b)
}

func (api *batchApi) update(ctx echo.Context) error {
	var data batch.NewBatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBatch")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	b, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating batch")
	}
	return ctx.JSON(http.StatusOK, b)
}

func (api *batchApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting batch")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *batchApi) join(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	enr, err := api.svc.Join(ctx.Request().Context(), sess.UserID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "joining batch")
	}
	return ctx.JSON(http.StatusCreated, enr)
}
