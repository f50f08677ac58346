package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/gym-membership-api/internal/model"
	"github.com/iliyamo/gym-membership-api/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, fullName, email, phone, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (full_name, email, phone, password_hash, role) VALUES (?,?,?,?,?)",
		fullName, email, phone, hash, role)
	if err != nil {
		// 1062 = MySQL duplicate entry, raised by the unique email index
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
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(ctx, "SELECT id,full_name,email,phone,password_hash,role,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(ctx, "SELECT id,full_name,email,phone,password_hash,role,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) scanOne(ctx context.Context, query string, arg interface{}) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.FullName, &u.Email, &u.Phone, &u.PasswordHash,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// List returns users matching the optional name/email search term,
// newest first. An empty search returns everyone. Results are capped
// by limit (defaulted to 100 when non-positive) for admin listing.
func (r *UserRepo) List(ctx context.Context, search string, limit int) ([]model.User, error) {
	if limit <= 0 {
		limit = 100
	}
	query := "SELECT id,full_name,email,phone,password_hash,role,is_active,created_at,updated_at FROM users"
	args := []interface{}{}
	if s := strings.TrimSpace(search); s != "" {
		query += " WHERE full_name LIKE ? OR email LIKE ?"
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.PasswordHash,
			&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SetActive toggles the account flag. Returns ErrNotFound when the
// user does not exist.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=?, updated_at=NOW() WHERE id=?", active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountCreatedBetween counts users created in [from, to), used by the
// dashboard's new-members metric.
func (r *UserRepo) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE created_at >= ? AND created_at < ?",
		from, to).Scan(&n)
	return n, err
}

// Contact is the delivery address book entry used by announcement
// fan-out: one row per active user in the audience.
type Contact struct {
	UserID   uint64 `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// ListContacts returns contact details of active users in the given
// audience (ALL, MEMBERS or ADMINS). Contacts are resolved at publish
// time so queue consumers never query the primary database.
func (r *UserRepo) ListContacts(ctx context.Context, audience string) ([]Contact, error) {
	query := "SELECT id, full_name, email, phone FROM users WHERE is_active=1"
	args := []interface{}{}
	switch audience {
	case model.AudienceMembers:
		query += " AND role=?"
		args = append(args, model.RoleMember)
	case model.AudienceAdmins:
		query += " AND role=?"
		args = append(args, model.RoleAdmin)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.UserID, &c.FullName, &c.Email, &c.Phone); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
