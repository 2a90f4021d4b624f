package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"agri_advisor/internal/model"
)

// MemoryUserRepository is an in-process UserRepository used when no
// database is configured. Records are copied in and out.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users []*model.User
}

// NewMemoryUserRepository returns a repository holding copies of users.
func NewMemoryUserRepository(users ...*model.User) *MemoryUserRepository {
	r := &MemoryUserRepository{}
	for _, u := range users {
		r.users = append(r.users, u.Clone())
	}
	return r
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == user.ID {
			return fmt.Errorf("failed to create user: id %q already exists", user.ID)
		}
		if user.Phone != "" && u.Phone == user.Phone {
			return ErrDuplicatePhone
		}
	}
	r.users = append(r.users, user.Clone())
	return nil
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id }), nil
}

func (r *MemoryUserRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	if phone == "" {
		return nil, nil
	}
	return r.find(func(u *model.User) bool { return u.Phone == phone }), nil
}

func (r *MemoryUserRepository) FindByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error) {
	if email == "" {
		return nil, nil
	}
	return r.find(func(u *model.User) bool { return u.Email == email && u.Role == role }), nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID != user.ID {
			continue
		}
		// Same columns as the Postgres UPDATE; identity and credentials stay.
		src := user.Clone()
		updated := u.Clone()
		updated.Name = src.Name
		updated.Panchayat = src.Panchayat
		updated.District = src.District
		updated.PrimaryCrops = src.PrimaryCrops
		updated.LandSize = src.LandSize
		updated.Experience = src.Experience
		updated.ProfileCompleted = src.ProfileCompleted
		updated.Locale = src.Locale
		updated.UpdatedAt = src.UpdatedAt
		r.users[i] = updated
		return nil
	}
	return ErrUserNotFound
}

func (r *MemoryUserRepository) find(match func(*model.User) bool) *model.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return u.Clone()
		}
	}
	return nil
}

// MemoryPasscodeRepository is an in-process PasscodeRepository.
type MemoryPasscodeRepository struct {
	mu      sync.Mutex
	pending map[string]model.PendingPasscode
}

// NewMemoryPasscodeRepository returns an empty passcode table.
func NewMemoryPasscodeRepository() *MemoryPasscodeRepository {
	return &MemoryPasscodeRepository{pending: make(map[string]model.PendingPasscode)}
}

func (r *MemoryPasscodeRepository) Put(ctx context.Context, p *model.PendingPasscode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for phone, pending := range r.pending {
		if pending.IsExpired(p.CreatedAt) {
			delete(r.pending, phone)
		}
	}
	stored := *p
	stored.Attempts = 0
	r.pending[p.Phone] = stored
	return nil
}

func (r *MemoryPasscodeRepository) Get(ctx context.Context, phone string) (*model.PendingPasscode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[phone]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *MemoryPasscodeRepository) Consume(ctx context.Context, phone, code string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[phone]
	if !ok || p.Code != code || p.IsExpired(now) {
		return false, nil
	}
	delete(r.pending, phone)
	return true, nil
}

func (r *MemoryPasscodeRepository) RecordFailedAttempt(ctx context.Context, phone string, max int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[phone]
	if !ok {
		return 0, nil
	}
	p.Attempts++
	if max > 0 && p.Attempts >= max {
		delete(r.pending, phone)
	} else {
		r.pending[phone] = p
	}
	return p.Attempts, nil
}

