package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/expomatch/server/internal/utils"
)

// User mirrors the 'users' table.
type User struct {
	ID           uint64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Phone        *string
	Bio          *string
	CreatedAt    time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// NewUser carries the fields accepted at registration.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    *string
	Bio      *string
}

// Create inserts a user, hashing the password with the given bcrypt cost,
// and returns the new ID. A duplicate email maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, nu NewUser, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(nu.Email))
	hash, err := utils.HashPassword(nu.Password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, phone, bio) VALUES (?,?,?,?,?,?)",
		nu.Name, email, hash, nu.Role, nu.Phone, nu.Bio)
	if err != nil {
		// MySQL 1062 = duplicate entry for the unique email index.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,role,phone,bio,created_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.Bio, &u.CreatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,role,phone,bio,created_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.Bio, &u.CreatedAt)
	return u, err
}
