package inmemdb

import (
	"context"
	"time"

	"github.com/Shubham414kumar/vidyasphere/core/donation"
)

type donationRepository struct {
	db *DB
}

var _ donation.Repository = (*donationRepository)(nil)

func NewDonationRepository(db *DB) donation.Repository {
	return &donationRepository{db: db}
}

func (repo *donationRepository) CreateDonation(_ context.Context, d donation.Donation) (donation.Donation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	d.ID = newID()
	repo.db.donations[d.OrderID] = &d
	return d, nil
}

func (repo *donationRepository) GetDonationByOrderID(_ context.Context, orderID string) (donation.Donation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if d, ok := repo.db.donations[orderID]; ok {
		return *d, nil
	}
	return donation.Donation{}, donation.ErrNotFound
}

func (repo *donationRepository) UpdateDonationStatus(
	_ context.Context,
	orderID string,
	status donation.Status,
	paidAt *time.Time,
) (donation.Donation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	d, ok := repo.db.donations[orderID]
	if !ok {
		return donation.Donation{}, donation.ErrNotFound
	}
	d.Status = status
	if paidAt != nil {
		t := *paidAt
		d.PaidAt = &t
	}
	return *d, nil
}

func (repo *donationRepository) SumDonations(_ context.Context, statuses ...donation.Status) (int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var total int64
	for _, d := range repo.db.donations {
		for _, s := range statuses {
			if d.Status == s {
				total += d.Amount
				break
			}
		}
	}
	return total, nil
}
