package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type count int

func (c count) Count(context.Context) (int, error) { return int(c), nil }

type total int64

func (t total) Total(context.Context) (int64, error) { return int64(t), nil }

type failing struct{}

func (failing) Count(context.Context) (int, error) { return 0, errors.New("db down") }

func TestStats(t *testing.T) {
	svc := NewService(count(4), count(10), count(3), count(2), total(1500))
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Users: 4, Notes: 10, PYQs: 3, Batches: 2, DonationsTotal: 1500}, stats)

	svc = NewService(count(4), failing{}, count(3), count(2), total(0))
	_, err = svc.Stats(context.Background())
	assert.EqualError(t, err, "counting notes: db down")
}
