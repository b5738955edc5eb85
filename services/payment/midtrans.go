// Package paymentsvc charges donations through Midtrans.
package paymentsvc

import (
	"context"
	"strings"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/donation"
)

type midtransGateway struct {
	snap    snap.Client
	coreAPI coreapi.Client
	appName string
}

var _ donation.PaymentGateway = (*midtransGateway)(nil)

// NewGateway returns nil when no Midtrans server key is configured.
func NewGateway(conf *core.Config) donation.PaymentGateway {
	if conf.Payment.MidtransServerKey == "" {
		return nil
	}
	env := midtrans.Sandbox
	if conf.Payment.MidtransProduction {
		env = midtrans.Production
	}
	g := &midtransGateway{appName: conf.AppName}
	g.snap.New(conf.Payment.MidtransServerKey, env)
	g.coreAPI.New(conf.Payment.MidtransServerKey, env)
	return g
}

func (g *midtransGateway) Name() string { return "midtrans" }

func (g *midtransGateway) Checkout(_ context.Context, d donation.Donation) (donation.Checkout, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  d.OrderID,
			GrossAmt: d.Amount,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    d.OrderID,
			Price: d.Amount,
			Qty:   1,
			Name:  "Donation to " + g.appName,
		}},
	}
	if d.DonorEmail != "" || d.DonorName != "" {
		req.CustomerDetail = &midtrans.CustomerDetails{FName: d.DonorName, Email: d.DonorEmail}
	}

	res, mErr := g.snap.CreateTransaction(req)
	if mErr != nil {
		return donation.Checkout{}, errors.Wrap(mErr, "midtrans: creating transaction")
	}
	return donation.Checkout{Gateway: g.Name(), Token: res.Token, RedirectURL: res.RedirectURL}, nil
}

func (g *midtransGateway) Status(_ context.Context, orderID string) (donation.Status, error) {
	res, mErr := g.coreAPI.CheckTransaction(orderID)
	if mErr != nil {
		return "", errors.Wrap(mErr, "midtrans: checking transaction")
	}
	return MapStatus(res.TransactionStatus, res.FraudStatus), nil
}

// MapStatus translates a Midtrans transaction status to a donation status.
func MapStatus(transactionStatus, fraudStatus string) donation.Status {
	switch strings.ToLower(transactionStatus) {
	case "capture":
		switch strings.ToLower(fraudStatus) {
		case "accept", "":
			return donation.StatusPaid
		case "challenge":
			return donation.StatusPending
		}
		return donation.StatusFailed
	case "settlement":
		return donation.StatusPaid
	case "pending", "authorize":
		return donation.StatusPending
	default: // deny, cancel, expire, failure, refund
		return donation.StatusFailed
	}
}
