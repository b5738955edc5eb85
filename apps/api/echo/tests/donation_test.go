package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shubham414kumar/vidyasphere/core/dashboard"
	"github.com/Shubham414kumar/vidyasphere/core/donation"
	"github.com/Shubham414kumar/vidyasphere/core/user"
)

func Test_donationApi(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Ravi", "ravi@test.in")
	admin := app.createUser(t, "Admin", "admin@test.in", user.RoleAdmin)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "no amount",
			method:   http.MethodPost,
			path:     "/v1/donations",
			body:     marshallObj(t, donation.NewDonation{DonorName: "Asha"}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"amount": "this field is required"}),
		},
		{
			name:     "notification without a gateway",
			method:   http.MethodPost,
			path:     "/v1/donations/notifications",
			body:     []byte(`{"order_id":"VS-123"}`),
			wantCode: http.StatusServiceUnavailable,
			wantData: marshallObj(t, httpErr{Error: "payments are not configured"}),
		},
	})

	// without a gateway a pledge is recorded as is
	rec := app.do(newRequest(http.MethodPost, "/v1/donations", marshallObj(t, donation.NewDonation{Amount: 500})))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var receipt donation.Receipt
	unmarshallObj(t, rec.Body.Bytes(), &receipt)
	assert.Equal(t, donation.StatusRecorded, receipt.Donation.Status)
	assert.Equal(t, "Anonymous", receipt.Donation.DonorName)
	assert.Empty(t, receipt.Donation.UserID)
	assert.Nil(t, receipt.Checkout)

	// signed-in donors are linked to their account
	rec = app.do(newAuthRequest(http.MethodPost, "/v1/donations", app.token(t, usr),
		marshallObj(t, donation.NewDonation{Amount: 250, DonorName: "Ravi"})))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	unmarshallObj(t, rec.Body.Bytes(), &receipt)
	assert.Equal(t, usr.ID, receipt.Donation.UserID)
	assert.Equal(t, "ravi@test.in", receipt.Donation.DonorEmail)

	// a bad token is still rejected
	rec = app.do(newAuthRequest(http.MethodPost, "/v1/donations", "not.a.jwt",
		marshallObj(t, donation.NewDonation{Amount: 250})))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(newAuthRequest(http.MethodGet, "/v1/admin/stats", app.token(t, admin)))
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marshallObj(t, dashboard.Stats{Users: 2, DonationsTotal: 750}),
	}, rec)
}
