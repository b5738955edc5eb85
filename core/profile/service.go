package profile

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
)

var ErrNotFound = core.NewNotFoundError("profile")

type (
	Repository interface {
		GetProfileByUserID(ctx context.Context, userID string) (Profile, error)
		// UpsertProfile inserts the profile, or updates the existing one of the same user.
		UpsertProfile(ctx context.Context, prof Profile) (Profile, error)
		CountProfiles(ctx context.Context) (int, error)
	}

	Service interface {
		Get(ctx context.Context, userID string) (Profile, error)
		Upsert(ctx context.Context, userID string, up UpdateProfile) (Profile, error)
		Count(ctx context.Context) (int, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Get(ctx context.Context, userID string) (Profile, error) {
	return svc.repo.GetProfileByUserID(ctx, userID)
}

func (svc *service) Upsert(ctx context.Context, userID string, up UpdateProfile) (Profile, error) {
	now := time.Now().UTC()
	prof, err := svc.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return Profile{}, errors.Wrap(err, "getting profile")
		}
		prof = Profile{UserID: userID, CreatedAt: now}
	}
	prof.FullName = up.FullName
	prof.Phone = up.Phone
	prof.Grade = up.Grade
	prof.UpdatedAt = now
	return svc.repo.UpsertProfile(ctx, prof)
}

func (svc *service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountProfiles(ctx)
}
