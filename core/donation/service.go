package donation

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
)

var (
	ErrNotFound        = core.NewNotFoundError("donation")
	ErrNoGateway       = errors.New("no payment gateway configured")
	ErrUnknownDonation = core.NewValidationError(errors.New("unknown order"))
)

type (
	// PaymentGateway charges donors and reports the status of their orders.
	PaymentGateway interface {
		Name() string
		Checkout(ctx context.Context, d Donation) (Checkout, error)
		Status(ctx context.Context, orderID string) (Status, error)
	}

	Repository interface {
		CreateDonation(ctx context.Context, d Donation) (Donation, error)
		GetDonationByOrderID(ctx context.Context, orderID string) (Donation, error)
		UpdateDonationStatus(ctx context.Context, orderID string, status Status, paidAt *time.Time) (Donation, error)
		// SumDonations adds the amounts of the donations in any of the statuses.
		SumDonations(ctx context.Context, statuses ...Status) (int64, error)
	}

	Service interface {
		Donate(ctx context.Context, userID string, nd NewDonation) (Receipt, error)
		HandleNotification(ctx context.Context, orderID string) (Donation, error)
		Total(ctx context.Context) (int64, error)
	}

	Options struct {
		AppName         string
		FrontendBaseURL string
	}

	service struct {
		repo    Repository
		gateway PaymentGateway // nil when payments are not configured
		mailSvc core.EmailService
		logger  core.Logger
		opts    Options
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, gateway PaymentGateway, mailSvc core.EmailService, logger core.Logger, opts Options) Service {
	return &service{
		repo:    repo,
		gateway: gateway,
		mailSvc: mailSvc,
		logger:  logger,
		opts:    opts,
	}
}

func newOrderID() string {
	return "DON-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:16])
}

// Donate records the donation. With a gateway the donation waits for payment; otherwise it is recorded as is.
func (svc *service) Donate(ctx context.Context, userID string, nd NewDonation) (Receipt, error) {
	d := Donation{
		OrderID:    newOrderID(),
		UserID:     userID,
		DonorName:  nd.DonorName,
		DonorEmail: nd.DonorEmail,
		Message:    nd.Message,
		Amount:     nd.Amount,
		Status:     StatusRecorded,
		CreatedAt:  time.Now().UTC(),
	}
	if d.DonorName == "" {
		d.DonorName = "Anonymous"
	}
	if svc.gateway != nil {
		d.Status = StatusPending
	}

	d, err := svc.repo.CreateDonation(ctx, d)
	if err != nil {
		return Receipt{}, errors.Wrap(err, "creating donation")
	}

	if svc.gateway == nil {
		svc.sendReceiptMail(d)
		return Receipt{Donation: d}, nil
	}

	checkout, err := svc.gateway.Checkout(ctx, d)
	if err != nil {
		if _, uErr := svc.repo.UpdateDonationStatus(ctx, d.OrderID, StatusFailed, nil); uErr != nil {
			svc.logger.Error("marking donation as failed", errors.Wrap(uErr, d.OrderID))
		}
		return Receipt{}, errors.Wrap(err, "creating checkout")
	}
	return Receipt{Donation: d, Checkout: &checkout}, nil
}

// HandleNotification asks the gateway for the order status. Only pending donations move.
func (svc *service) HandleNotification(ctx context.Context, orderID string) (Donation, error) {
	if svc.gateway == nil {
		return Donation{}, ErrNoGateway
	}
	d, err := svc.repo.GetDonationByOrderID(ctx, orderID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Donation{}, ErrUnknownDonation
		}
		return Donation{}, errors.Wrap(err, "getting donation")
	}
	if d.Status != StatusPending {
		return d, nil
	}

	status, err := svc.gateway.Status(ctx, orderID)
	if err != nil {
		return Donation{}, errors.Wrap(err, "getting payment status")
	}
	if status == d.Status {
		return d, nil
	}

	var paidAt *time.Time
	if status == StatusPaid {
		now := time.Now().UTC()
		paidAt = &now
	}
	d, err = svc.repo.UpdateDonationStatus(ctx, orderID, status, paidAt)
	if err != nil {
		return Donation{}, errors.Wrap(err, "updating donation status")
	}
	if d.Status == StatusPaid {
		svc.sendReceiptMail(d)
	}
	return d, nil
}

func (svc *service) Total(ctx context.Context) (int64, error) {
	return svc.repo.SumDonations(ctx, StatusRecorded, StatusPaid)
}

func (svc *service) sendReceiptMail(d Donation) {
	if d.DonorEmail == "" {
		return
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: d.DonorName, Address: d.DonorEmail}},
		Subject:      "Thank you for supporting " + svc.opts.AppName,
		TemplateName: "donation_receipt",
		TemplateData: map[string]string{
			"Name":    d.DonorName,
			"Amount":  fmt.Sprintf("₹%d", d.Amount),
			"OrderID": d.OrderID,
		},
	}
	if err := msg.Render(svc.opts.AppName, svc.opts.FrontendBaseURL); err != nil {
		svc.logger.Error("rendering donation receipt", errors.Wrap(err, d.OrderID))
		return
	}
	svc.mailSvc.SendMessages(msg)
}
