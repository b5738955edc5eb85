package donation_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/donation"
	"github.com/Shubham414kumar/vidyasphere/services/email"
	"github.com/Shubham414kumar/vidyasphere/storage/database/inmem"
	"github.com/Shubham414kumar/vidyasphere/tests"
)

type gatewayMock struct {
	status      donation.Status
	checkoutErr error
}

func (g *gatewayMock) Name() string { return "mock" }

func (g *gatewayMock) Checkout(_ context.Context, d donation.Donation) (donation.Checkout, error) {
	if g.checkoutErr != nil {
		return donation.Checkout{}, g.checkoutErr
	}
	return donation.Checkout{Gateway: "mock", Token: "tok-" + d.OrderID, RedirectURL: "https://pay.test/" + d.OrderID}, nil
}

func (g *gatewayMock) Status(context.Context, string) (donation.Status, error) {
	return g.status, nil
}

func setup(t *testing.T, gateway donation.PaymentGateway) (donation.Service, *emailsvc.ConsoleServiceMock) {
	t.Helper()
	conf := core.NewTestConfig()
	logger := testutil.NewLogger()
	core.ParseEmailTemplates(logger)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	repo := inmemdb.NewDonationRepository(inmemdb.Open())
	opts := donation.Options{AppName: conf.AppName, FrontendBaseURL: conf.FrontendBaseURL}
	return donation.NewService(repo, gateway, mailSvc, logger, opts), mailSvc
}

func TestDonateWithoutGateway(t *testing.T) {
	svc, mailSvc := setup(t, nil)
	ctx := context.Background()

	r, err := svc.Donate(ctx, "", donation.NewDonation{Amount: 500})
	require.NoError(t, err)
	assert.Nil(t, r.Checkout)
	assert.Equal(t, donation.StatusRecorded, r.Donation.Status)
	assert.Equal(t, "Anonymous", r.Donation.DonorName)
	assert.Regexp(t, `^DON-[0-9A-F]{16}$`, r.Donation.OrderID)
	assert.Empty(t, mailSvc.SentMessages(), "no email, no receipt")

	r, err = svc.Donate(ctx, "u1", donation.NewDonation{Amount: 250, DonorName: "Priya", DonorEmail: "priya@test.in"})
	require.NoError(t, err)
	assert.Equal(t, "u1", r.Donation.UserID)
	sent := mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "priya@test.in", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, r.Donation.OrderID)

	total, err := svc.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(750), total)

	_, err = svc.HandleNotification(ctx, r.Donation.OrderID)
	assert.Equal(t, donation.ErrNoGateway, errors.Cause(err))
}

func TestDonateWithGateway(t *testing.T) {
	gateway := &gatewayMock{status: donation.StatusPending}
	svc, mailSvc := setup(t, gateway)
	ctx := context.Background()

	r, err := svc.Donate(ctx, "", donation.NewDonation{Amount: 1000, DonorEmail: "priya@test.in"})
	require.NoError(t, err)
	require.NotNil(t, r.Checkout)
	assert.Equal(t, "tok-"+r.Donation.OrderID, r.Checkout.Token)
	assert.Equal(t, donation.StatusPending, r.Donation.Status)

	// pending donations are not counted
	total, err := svc.Total(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	d, err := svc.HandleNotification(ctx, r.Donation.OrderID)
	require.NoError(t, err)
	assert.Equal(t, donation.StatusPending, d.Status)

	gateway.status = donation.StatusPaid
	d, err = svc.HandleNotification(ctx, r.Donation.OrderID)
	require.NoError(t, err)
	assert.Equal(t, donation.StatusPaid, d.Status)
	assert.NotNil(t, d.PaidAt)
	assert.Len(t, mailSvc.SentMessages(), 1)

	// settled donations do not move anymore
	gateway.status = donation.StatusFailed
	d, err = svc.HandleNotification(ctx, r.Donation.OrderID)
	require.NoError(t, err)
	assert.Equal(t, donation.StatusPaid, d.Status)

	total, err = svc.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), total)

	_, err = svc.HandleNotification(ctx, "DON-UNKNOWN")
	assert.Equal(t, donation.ErrUnknownDonation, errors.Cause(err))
}

func TestDonateCheckoutFailure(t *testing.T) {
	svc, _ := setup(t, &gatewayMock{checkoutErr: errors.New("gateway down")})
	ctx := context.Background()

	_, err := svc.Donate(ctx, "", donation.NewDonation{Amount: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway down")
}
