package inmemdb

import (
	"context"

	"github.com/Shubham414kumar/vidyasphere/core/profile"
)

type profileRepository struct {
	db *DB
}

var _ profile.Repository = (*profileRepository)(nil)

func NewProfileRepository(db *DB) profile.Repository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) GetProfileByUserID(_ context.Context, userID string) (profile.Profile, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if prof, ok := repo.db.profiles[userID]; ok {
		return *prof, nil
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (repo *profileRepository) UpsertProfile(_ context.Context, prof profile.Profile) (profile.Profile, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if orig, ok := repo.db.profiles[prof.UserID]; ok {
		orig.FullName = prof.FullName
		orig.Phone = prof.Phone
		orig.Grade = prof.Grade
		orig.UpdatedAt = prof.UpdatedAt
		return *orig, nil
	}
	if prof.ID == "" {
		prof.ID = newID()
	}
	repo.db.profiles[prof.UserID] = &prof
	return prof, nil
}

func (repo *profileRepository) CountProfiles(_ context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.profiles), nil
}
