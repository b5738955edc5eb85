package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core/document"
)

// documentApi serves one document kind; notes and PYQs share it.
type documentApi struct {
	svc      document.Service
	validate *validator.Validate
}

func registerDocumentAPI(
	g *echo.Group,
	auth, admin echo.MiddlewareFunc,
	svc document.Service,
	validate *validator.Validate,
) {
	api := documentApi{svc: svc, validate: validate}

	g.GET("", api.query)
	g.GET("/browse", api.browse)
	g.GET("/:id", api.retrieve)
	g.POST("/:id/views", api.view)
	g.POST("/:id/downloads", api.download)

	g.POST("", api.create, auth)
	g.DELETE("/:id", api.destroy, auth, admin)
}

func (api *documentApi) query(ctx echo.Context) error {
	filter := new(document.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []document.Document{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	docs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings, bindLimit(ctx))
	if err != nil {
		return errors.Wrap(err, "querying documents")
	}
	if docs == nil {
		docs = []document.Document{}
	}
	return ctx.JSON(http.StatusOK, docs)
}

func (api *documentApi) browse(ctx echo.Context) error {
	var sel document.Selection
	if err := ctx.Bind(&sel); err != nil {
		return errors.Wrap(err, "binding to Selection")
	}
	res, err := api.svc.Browse(ctx.Request().Context(), sel)
	if err != nil {
		return errors.Wrap(err, "browsing documents")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *documentApi) retrieve(ctx echo.Context) error {
	doc, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting document")
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *documentApi) create(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	var data document.NewDocument
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDocument")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	doc, err := api.svc.Create(ctx.Request().Context(), sess.UserID, data)
	if err != nil {
		return errors.Wrap(err, "creating document")
	}
	return ctx.JSON(http.StatusCreated, doc)
}

func (api *documentApi) destroy(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), sess.Roles, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting document")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *documentApi) view(ctx echo.Context) error {
	doc, err := api.svc.IncrementViews(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "counting view")
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *documentApi) download(ctx echo.Context) error {
	doc, err := api.svc.IncrementDownloads(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "counting download")
	}
	return ctx.JSON(http.StatusOK, doc)
}
