package donation

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Shubham414kumar/vidyasphere/core"
)

type Status string

const (
	StatusRecorded Status = "recorded" // no payment gateway: the pledge is taken as is
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
)

// Counted reports whether donations in this status count toward the total.
func (s Status) Counted() bool { return s == StatusRecorded || s == StatusPaid }

type Donation struct {
	ID         string     `json:"id"`
	OrderID    string     `json:"order_id"`
	UserID     string     `json:"user_id,omitempty"`
	DonorName  string     `json:"donor_name"`
	DonorEmail string     `json:"donor_email,omitempty"`
	Message    string     `json:"message,omitempty"`
	Amount     int64      `json:"amount"` // whole rupees
	Status     Status     `json:"status"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type NewDonation struct {
	Amount     int64  `json:"amount" validate:"required,min=1,max=10000000"`
	DonorName  string `json:"donor_name" validate:"max=120"`
	DonorEmail string `json:"donor_email" validate:"omitempty,email"`
	Message    string `json:"message" validate:"max=500"`
}

func (nd *NewDonation) Validate(validate *validator.Validate) error {
	nd.DonorName = core.CleanString(nd.DonorName)
	nd.DonorEmail = core.CleanString(nd.DonorEmail, true /* lower */)
	nd.Message = core.CleanString(nd.Message)
	return validate.Struct(nd)
}

// Checkout is where the donor completes the payment.
type Checkout struct {
	Gateway     string `json:"gateway"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type Receipt struct {
	Donation Donation  `json:"donation"`
	Checkout *Checkout `json:"checkout,omitempty"`
}
