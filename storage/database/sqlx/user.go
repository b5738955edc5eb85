package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Shubham414kumar/vidyasphere/core/profile"
	"github.com/Shubham414kumar/vidyasphere/core/user"
)

const userColumns = "id, email, password_hash, provider, provider_id, email_verified, is_active, created_at, updated_at, last_login"

type userRow struct {
	ID            string      `db:"id"`
	Email         string      `db:"email"`
	PasswordHash  null.Bytes  `db:"password_hash"`
	Provider      string      `db:"provider"`
	ProviderID    null.String `db:"provider_id"`
	EmailVerified bool        `db:"email_verified"`
	IsActive      bool        `db:"is_active"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
	LastLogin     null.Time   `db:"last_login"`
}

type roleAssignmentRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Email     string    `db:"email"`
	FullName  string    `db:"full_name"`
	Phone     string    `db:"phone"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo userRepository) toRow(usr user.User) userRow {
	return userRow{
		ID:            usr.ID,
		Email:         usr.Email,
		PasswordHash:  null.NewBytes(usr.PasswordHash, len(usr.PasswordHash) > 0),
		Provider:      usr.Provider,
		ProviderID:    null.NewString(usr.ProviderID, usr.ProviderID != ""),
		EmailVerified: usr.EmailVerified,
		IsActive:      usr.IsActive,
		CreatedAt:     usr.CreatedAt.UTC(),
		UpdatedAt:     usr.UpdatedAt.UTC(),
		LastLogin:     null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) fromRow(row userRow, roles []string) user.User {
	return user.User{
		ID:            row.ID,
		Email:         row.Email,
		PasswordHash:  row.PasswordHash.Bytes,
		Provider:      row.Provider,
		ProviderID:    row.ProviderID.String,
		EmailVerified: row.EmailVerified,
		IsActive:      row.IsActive,
		Roles:         roles,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		LastLogin:     row.LastLogin.Time,
	}
}

func (repo userRepository) getUser(ctx context.Context, cond string, args ...interface{}) (user.User, error) {
	var row userRow
	q := "SELECT " + userColumns + " FROM users WHERE " + cond
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user")
	}
	roles, err := repo.roles(ctx, row.ID)
	if err != nil {
		return user.User{}, err
	}
	return repo.fromRow(row, roles), nil
}

func (repo userRepository) roles(ctx context.Context, userID string) ([]string, error) {
	roles := make([]string, 0, 1)
	err := repo.db.SelectContext(ctx, &roles, "SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role", userID)
	return roles, errors.Wrap(err, "getting user roles")
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)", email)
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, prof profile.Profile) (user.User, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	usr.ID = uuid.New().String()
	row := repo.toRow(usr)
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :email, :password_hash, :provider, :provider_id, :email_verified, :is_active, :created_at, :updated_at, :last_login)`,
		row)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}

	for _, role := range usr.Roles {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO user_roles (id, user_id, role, created_at) VALUES ($1, $2, $3, $4)",
			uuid.New().String(), usr.ID, role, row.CreatedAt)
		if err != nil {
			return user.User{}, errors.Wrap(err, "inserting user role")
		}
	}

	prof.ID = uuid.New().String()
	prof.UserID = usr.ID
	if _, err = tx.NamedExecContext(ctx, profileInsert, newProfileRow(prof)); err != nil {
		return user.User{}, errors.Wrap(err, "inserting profile")
	}

	if err = tx.Commit(); err != nil {
		return user.User{}, errors.Wrap(err, "committing user")
	}
	return repo.fromRow(row, usr.Roles), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if !validID(id) {
		return user.User{}, user.ErrNotFound
	}
	return repo.getUser(ctx, "id = $1", id)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, "email = $1", email)
}

func (repo userRepository) GetUserByProvider(ctx context.Context, provider, providerID string) (user.User, error) {
	if providerID == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.getUser(ctx, "provider = $1 AND provider_id = $2", provider, providerID)
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	if !validID(usr.ID) {
		return user.User{}, user.ErrNotFound
	}
	row := repo.toRow(usr)
	q, args, err := repo.db.BindNamed(`
		UPDATE users
		SET email = :email, password_hash = :password_hash, provider = :provider, provider_id = :provider_id,
			email_verified = :email_verified, is_active = :is_active, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id
		RETURNING `+userColumns, row)
	if err != nil {
		return user.User{}, errors.Wrap(err, "binding user")
	}

	var updated userRow
	if err = repo.db.GetContext(ctx, &updated, q, args...); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "updating user")
	}
	roles, err := repo.roles(ctx, updated.ID)
	if err != nil {
		return user.User{}, err
	}
	return repo.fromRow(updated, roles), nil
}

const roleAssignmentQuery = `
	SELECT ur.id, ur.user_id, u.email, COALESCE(p.full_name, '') AS full_name, COALESCE(p.phone, '') AS phone,
		ur.role, ur.created_at
	FROM user_roles ur
	JOIN users u ON u.id = ur.user_id
	LEFT JOIN profiles p ON p.user_id = ur.user_id`

func (repo userRepository) QueryRoles(ctx context.Context) ([]user.RoleAssignment, error) {
	var rows []roleAssignmentRow
	if err := repo.db.SelectContext(ctx, &rows, roleAssignmentQuery+" ORDER BY ur.created_at DESC"); err != nil {
		return nil, errors.Wrap(err, "querying user roles")
	}
	roles := make([]user.RoleAssignment, 0, len(rows))
	for _, r := range rows {
		roles = append(roles, user.RoleAssignment(r))
	}
	return roles, nil
}

func (repo userRepository) AddRole(ctx context.Context, userID, role string) (user.RoleAssignment, error) {
	id := uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		"INSERT INTO user_roles (id, user_id, role, created_at) VALUES ($1, $2, $3, $4)",
		id, userID, role, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err, "user_roles_user_role_key") {
			return user.RoleAssignment{}, user.ErrRoleExists
		}
		return user.RoleAssignment{}, errors.Wrap(err, "inserting user role")
	}

	var row roleAssignmentRow
	if err = repo.db.GetContext(ctx, &row, roleAssignmentQuery+" WHERE ur.id = $1", id); err != nil {
		return user.RoleAssignment{}, trapNoRowsErr(err, user.ErrRoleNotFound, "getting user role")
	}
	return user.RoleAssignment(row), nil
}

func (repo userRepository) DeleteRole(ctx context.Context, id string) error {
	if !validID(id) {
		return user.ErrRoleNotFound
	}
	res, err := repo.db.ExecContext(ctx, "DELETE FROM user_roles WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting user role")
	}
	return checkAffected(res, user.ErrRoleNotFound, "deleting user role")
}
