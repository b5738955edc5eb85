package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/donation"
)

type donationApi struct {
	svc      donation.Service
	validate *validator.Validate
}

func registerDonationAPI(g *echo.Group, optionalAuth echo.MiddlewareFunc, svc donation.Service, validate *validator.Validate) {
	api := donationApi{svc: svc, validate: validate}

	dg := g.Group("/donations")
	dg.POST("", api.create, optionalAuth)
	dg.POST("/notifications", api.notify)
}

// create accepts anonymous donations; signed-in donors get the donation linked to their account.
func (api *donationApi) create(ctx echo.Context) error {
	var data donation.NewDonation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDonation")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	var userID string
	if sess, ok := CurrentSession(ctx); ok {
		userID = sess.UserID
		if data.DonorEmail == "" {
			data.DonorEmail = sess.Email
		}
	}

	receipt, err := api.svc.Donate(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "donating")
	}
	return ctx.JSON(http.StatusCreated, receipt)
}

// notify is called by the payment gateway. Only the order ID is trusted; the status is fetched back from the gateway.
func (api *donationApi) notify(ctx echo.Context) error {
	var data PaymentNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PaymentNotification")
	}
	data.OrderID = core.CleanString(data.OrderID)
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	d, err := api.svc.HandleNotification(ctx.Request().Context(), data.OrderID)
	if err != nil {
		if errors.Cause(err) == donation.ErrNoGateway {
			return errPaymentsDisabled
		}
		return errors.Wrap(err, "handling payment notification")
	}
	return ctx.JSON(http.StatusOK, d)
}

type PaymentNotification struct {
	OrderID string `json:"order_id" validate:"required"`
}
