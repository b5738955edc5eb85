package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/Shubham414kumar/vidyasphere/core/profile"
	"github.com/Shubham414kumar/vidyasphere/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

// withRoles copies usr and fills its roles. The lock must be held.
func (repo *userRepository) withRoles(usr *user.User) user.User {
	u := *usr
	u.Roles = make([]string, 0, 1)
	for _, ra := range repo.db.userRoles {
		if ra.UserID == u.ID {
			u.Roles = append(u.Roles, ra.Role)
		}
	}
	sort.Strings(u.Roles)
	return u
}

func (repo *userRepository) find(match func(*user.User) bool) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if match(usr) {
			return repo.withRoles(usr), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	if _, err := repo.GetUserByEmail(ctx, email); err == nil {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User, prof profile.Profile) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, u := range repo.db.users {
		if u.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}

	usr.ID = newID()
	stored := usr
	stored.Roles = nil
	repo.db.users[usr.ID] = &stored

	for _, role := range usr.Roles {
		id := newID()
		repo.db.userRoles[id] = &user.RoleAssignment{
			ID:        id,
			UserID:    usr.ID,
			Email:     usr.Email,
			Role:      role,
			CreatedAt: usr.CreatedAt,
		}
	}

	prof.ID = newID()
	prof.UserID = usr.ID
	repo.db.profiles[usr.ID] = &prof

	return repo.withRoles(&stored), nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return repo.withRoles(usr), nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	return repo.find(func(u *user.User) bool { return u.Email == email })
}

func (repo *userRepository) GetUserByProvider(_ context.Context, provider, providerID string) (user.User, error) {
	if providerID == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.find(func(u *user.User) bool { return u.Provider == provider && u.ProviderID == providerID })
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	orig.Email = usr.Email
	orig.PasswordHash = usr.PasswordHash
	orig.Provider = usr.Provider
	orig.ProviderID = usr.ProviderID
	orig.EmailVerified = usr.EmailVerified
	orig.IsActive = usr.IsActive
	orig.UpdatedAt = usr.UpdatedAt
	orig.LastLogin = usr.LastLogin
	return repo.withRoles(orig), nil
}

// assignment joins ra with its user and profile. The lock must be held.
func (repo *userRepository) assignment(ra *user.RoleAssignment) user.RoleAssignment {
	r := *ra
	if usr, ok := repo.db.users[r.UserID]; ok {
		r.Email = usr.Email
	}
	if prof, ok := repo.db.profiles[r.UserID]; ok {
		r.FullName = prof.FullName
		r.Phone = prof.Phone
	}
	return r
}

func (repo *userRepository) QueryRoles(_ context.Context) ([]user.RoleAssignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	roles := make([]user.RoleAssignment, 0, len(repo.db.userRoles))
	for _, ra := range repo.db.userRoles {
		roles = append(roles, repo.assignment(ra))
	}
	sort.Slice(roles, func(i, j int) bool {
		if roles[i].CreatedAt.Equal(roles[j].CreatedAt) {
			return roles[i].ID < roles[j].ID
		}
		return roles[i].CreatedAt.After(roles[j].CreatedAt)
	})
	return roles, nil
}

func (repo *userRepository) AddRole(_ context.Context, userID, role string) (user.RoleAssignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[userID]; !ok {
		return user.RoleAssignment{}, user.ErrNotFound
	}
	for _, ra := range repo.db.userRoles {
		if ra.UserID == userID && ra.Role == role {
			return user.RoleAssignment{}, user.ErrRoleExists
		}
	}
	ra := &user.RoleAssignment{ID: newID(), UserID: userID, Role: role, CreatedAt: time.Now().UTC()}
	repo.db.userRoles[ra.ID] = ra
	return repo.assignment(ra), nil
}

func (repo *userRepository) DeleteRole(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.userRoles[id]; !ok {
		return user.ErrRoleNotFound
	}
	delete(repo.db.userRoles, id)
	return nil
}
