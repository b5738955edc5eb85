package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Shubham414kumar/vidyasphere/core/profile"
)

const (
	profileColumns = "id, user_id, full_name, phone, grade, created_at, updated_at"
	profileInsert  = `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES (:id, :user_id, :full_name, :phone, :grade, :created_at, :updated_at)`
)

type profileRow struct {
	ID        string      `db:"id"`
	UserID    string      `db:"user_id"`
	FullName  string      `db:"full_name"`
	Phone     null.String `db:"phone"`
	Grade     null.String `db:"grade"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func newProfileRow(prof profile.Profile) profileRow {
	return profileRow{
		ID:        prof.ID,
		UserID:    prof.UserID,
		FullName:  prof.FullName,
		Phone:     null.NewString(prof.Phone, prof.Phone != ""),
		Grade:     null.NewString(prof.Grade, prof.Grade != ""),
		CreatedAt: prof.CreatedAt.UTC(),
		UpdatedAt: prof.UpdatedAt.UTC(),
	}
}

func (row profileRow) profile() profile.Profile {
	return profile.Profile{
		ID:        row.ID,
		UserID:    row.UserID,
		FullName:  row.FullName,
		Phone:     row.Phone.String,
		Grade:     row.Grade.String,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

type profileRepository struct {
	db *sqlx.DB
}

var _ profile.Repository = (*profileRepository)(nil)

func NewProfileRepository(db *sqlx.DB) profile.Repository {
	return &profileRepository{db: db}
}

func (repo profileRepository) GetProfileByUserID(ctx context.Context, userID string) (profile.Profile, error) {
	if !validID(userID) {
		return profile.Profile{}, profile.ErrNotFound
	}
	var row profileRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+profileColumns+" FROM profiles WHERE user_id = $1", userID)
	if err != nil {
		return profile.Profile{}, trapNoRowsErr(err, profile.ErrNotFound, "getting profile")
	}
	return row.profile(), nil
}

func (repo profileRepository) UpsertProfile(ctx context.Context, prof profile.Profile) (profile.Profile, error) {
	if prof.ID == "" {
		prof.ID = uuid.New().String()
	}
	q, args, err := repo.db.BindNamed(profileInsert+`
		ON CONFLICT (user_id) DO UPDATE
		SET full_name = EXCLUDED.full_name, phone = EXCLUDED.phone, grade = EXCLUDED.grade, updated_at = EXCLUDED.updated_at
		RETURNING `+profileColumns, newProfileRow(prof))
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "binding profile")
	}
	var row profileRow
	if err = repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return profile.Profile{}, errors.Wrap(err, "upserting profile")
	}
	return row.profile(), nil
}

func (repo profileRepository) CountProfiles(ctx context.Context) (int, error) {
	var n int
	err := repo.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM profiles")
	return n, errors.Wrap(err, "counting profiles")
}
