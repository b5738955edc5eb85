// Package dashboard aggregates the numbers shown to admins.
package dashboard

import (
	"context"

	"github.com/pkg/errors"
)

type (
	Stats struct {
		Users          int   `json:"users"`
		Notes          int   `json:"notes"`
		PYQs           int   `json:"pyqs"`
		Batches        int   `json:"batches"`
		DonationsTotal int64 `json:"donations_total"`
	}

	Counter interface {
		Count(ctx context.Context) (int, error)
	}

	Totaler interface {
		Total(ctx context.Context) (int64, error)
	}

	Service interface {
		Stats(ctx context.Context) (Stats, error)
	}

	service struct {
		users, notes, pyqs, batches Counter
		donations                   Totaler
	}
)

var _ Service = (*service)(nil)

// NewService takes the services it counts from. Users are counted by their profiles.
func NewService(users, notes, pyqs, batches Counter, donations Totaler) Service {
	return &service{
		users:     users,
		notes:     notes,
		pyqs:      pyqs,
		batches:   batches,
		donations: donations,
	}
}

func (svc *service) Stats(ctx context.Context) (Stats, error) {
	var (
		stats Stats
		err   error
	)
	if stats.Users, err = svc.users.Count(ctx); err != nil {
		return Stats{}, errors.Wrap(err, "counting users")
	}
	if stats.Notes, err = svc.notes.Count(ctx); err != nil {
		return Stats{}, errors.Wrap(err, "counting notes")
	}
	if stats.PYQs, err = svc.pyqs.Count(ctx); err != nil {
		return Stats{}, errors.Wrap(err, "counting pyqs")
	}
	if stats.Batches, err = svc.batches.Count(ctx); err != nil {
		return Stats{}, errors.Wrap(err, "counting batches")
	}
	if stats.DonationsTotal, err = svc.donations.Total(ctx); err != nil {
		return Stats{}, errors.Wrap(err, "summing donations")
	}
	return stats, nil
}
