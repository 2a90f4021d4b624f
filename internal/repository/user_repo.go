package repository

import (
	"context"
	"errors"
	"fmt"

	"agri_advisor/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool used by the repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	// ErrUserNotFound is returned by Update when no row matches the user ID.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicatePhone is returned by Create when another user already has the phone.
	ErrDuplicatePhone = errors.New("phone already registered")
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	FindByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new Postgres-backed UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, role, COALESCE(phone, ''), COALESCE(email, ''), COALESCE(password_hash, ''),
	COALESCE(name, ''), COALESCE(panchayat, ''), COALESCE(district, ''),
	primary_crops, land_size, experience, profile_completed, locale, created_at, updated_at`

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (id, role, phone, email, password_hash, name, panchayat, district,
                primary_crops, land_size, experience, profile_completed, locale, created_at, updated_at)
            VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.db.Exec(ctx, sql,
		user.ID, string(user.Role), user.Phone, user.Email, user.PasswordHash,
		user.Name, user.Panchayat, user.District, user.PrimaryCrops, user.LandSize, user.Experience,
		user.ProfileCompleted, string(user.Locale), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "users_phone_key" {
			return ErrDuplicatePhone
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByPhone retrieves a user by their phone number
func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, phone))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by phone: %w", err)
	}
	return user, nil
}

// FindByEmailAndRole retrieves a user matching both email and role
func (r *userRepository) FindByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND role = $2`
	user, err := scanUser(r.db.QueryRow(ctx, sql, email, string(role)))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// Update overwrites the profile fields of an existing user
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	sql := `UPDATE users SET name = $2, panchayat = $3, district = $4, primary_crops = $5,
                land_size = $6, experience = $7, profile_completed = $8, locale = $9, updated_at = $10
            WHERE id = $1`
	tag, err := r.db.Exec(ctx, sql,
		user.ID, user.Name, user.Panchayat, user.District, user.PrimaryCrops,
		user.LandSize, user.Experience, user.ProfileCompleted, string(user.Locale), user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// scanUser returns (nil, nil) when the row does not exist; callers decide
// whether that is an error.
func scanUser(row pgx.Row) (*model.User, error) {
	var (
		user         model.User
		role, locale string
	)
	err := row.Scan(
		&user.ID, &role, &user.Phone, &user.Email, &user.PasswordHash,
		&user.Name, &user.Panchayat, &user.District,
		&user.PrimaryCrops, &user.LandSize, &user.Experience, &user.ProfileCompleted, &locale,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	user.Role = model.Role(role)
	user.Locale = model.Locale(locale)
	return &user, nil
}
