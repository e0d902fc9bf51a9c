package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jobfolio/apiserver/types"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and returns it with the assigned id.
// A collision on the email unique index is reported as ErrDuplicateEmail
// so callers can answer it differently from a backend failure.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	user.RegDate = time.Now()

	const query = `
		INSERT INTO users (fullname, email, password_hash, age, gender, profile_image, cv_filename, reg_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.Age,
		user.Gender,
		user.ProfileImage,
		user.CVFilename,
		user.RegDate,
	).Scan(&user.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return types.User{}, ErrDuplicateEmail
		}
		return types.User{}, err
	}
	return user, nil
}

// GetByEmail returns the full record including the password hash.
// It exists for login verification only.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT id, fullname, email, password_hash, age, gender, profile_image, cv_filename, reg_date
		FROM users
		WHERE email = $1`
	var user types.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.Age,
		&user.Gender,
		&user.ProfileImage,
		&user.CVFilename,
		&user.RegDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// GetByID returns the record without the password hash, for profile reads.
func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT id, fullname, email, age, gender, profile_image, cv_filename, reg_date
		FROM users
		WHERE id = $1`
	var user types.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.Age,
		&user.Gender,
		&user.ProfileImage,
		&user.CVFilename,
		&user.RegDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}
