package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Shubham414kumar/vidyasphere/core/donation"
)

const donationColumns = "id, order_id, user_id, donor_name, donor_email, message, amount, status, paid_at, created_at"

type donationRow struct {
	ID         string      `db:"id"`
	OrderID    string      `db:"order_id"`
	UserID     null.String `db:"user_id"`
	DonorName  string      `db:"donor_name"`
	DonorEmail null.String `db:"donor_email"`
	Message    null.String `db:"message"`
	Amount     int64       `db:"amount"`
	Status     string      `db:"status"`
	PaidAt     null.Time   `db:"paid_at"`
	CreatedAt  time.Time   `db:"created_at"`
}

func newDonationRow(d donation.Donation) donationRow {
	return donationRow{
		ID:         d.ID,
		OrderID:    d.OrderID,
		UserID:     null.NewString(d.UserID, d.UserID != ""),
		DonorName:  d.DonorName,
		DonorEmail: null.NewString(d.DonorEmail, d.DonorEmail != ""),
		Message:    null.NewString(d.Message, d.Message != ""),
		Amount:     d.Amount,
		Status:     string(d.Status),
		PaidAt:     null.TimeFromPtr(d.PaidAt),
		CreatedAt:  d.CreatedAt.UTC(),
	}
}

func (row donationRow) donation() donation.Donation {
	return donation.Donation{
		ID:         row.ID,
		OrderID:    row.OrderID,
		UserID:     row.UserID.String,
		DonorName:  row.DonorName,
		DonorEmail: row.DonorEmail.String,
		Message:    row.Message.String,
		Amount:     row.Amount,
		Status:     donation.Status(row.Status),
		PaidAt:     row.PaidAt.Ptr(),
		CreatedAt:  row.CreatedAt,
	}
}

type donationRepository struct {
	db *sqlx.DB
}

var _ donation.Repository = (*donationRepository)(nil)

func NewDonationRepository(db *sqlx.DB) donation.Repository {
	return &donationRepository{db: db}
}

func (repo donationRepository) CreateDonation(ctx context.Context, d donation.Donation) (donation.Donation, error) {
	d.ID = uuid.New().String()
	row := newDonationRow(d)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO donations (`+donationColumns+`)
		VALUES (:id, :order_id, :user_id, :donor_name, :donor_email, :message, :amount, :status, :paid_at, :created_at)`,
		row)
	if err != nil {
		return donation.Donation{}, errors.Wrap(err, "inserting donation")
	}
	return row.donation(), nil
}

func (repo donationRepository) GetDonationByOrderID(ctx context.Context, orderID string) (donation.Donation, error) {
	var row donationRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+donationColumns+" FROM donations WHERE order_id = $1", orderID)
	if err != nil {
		return donation.Donation{}, trapNoRowsErr(err, donation.ErrNotFound, "getting donation")
	}
	return row.donation(), nil
}

func (repo donationRepository) UpdateDonationStatus(
	ctx context.Context,
	orderID string,
	status donation.Status,
	paidAt *time.Time,
) (donation.Donation, error) {
	var row donationRow
	err := repo.db.GetContext(ctx, &row,
		"UPDATE donations SET status = $1, paid_at = COALESCE($2, paid_at) WHERE order_id = $3 RETURNING "+donationColumns,
		string(status), null.TimeFromPtr(paidAt), orderID)
	if err != nil {
		return donation.Donation{}, trapNoRowsErr(err, donation.ErrNotFound, "updating donation status")
	}
	return row.donation(), nil
}

func (repo donationRepository) SumDonations(ctx context.Context, statuses ...donation.Status) (int64, error) {
	strs := make([]string, 0, len(statuses))
	for _, s := range statuses {
		strs = append(strs, string(s))
	}
	var total int64
	err := repo.db.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(amount), 0) FROM donations WHERE status = ANY($1)", pq.Array(strs))
	return total, errors.Wrap(err, "summing donations")
}
