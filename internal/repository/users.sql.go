package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, email, username, password_hash, first_name, last_name, role, is_active, last_login_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Username,
		&i.PasswordHash,
		&i.FirstName,
		&i.LastName,
		&i.Role,
		&i.IsActive,
		&i.LastLoginAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (email, username, password_hash, first_name, last_name, role)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns

type CreateUserParams struct {
	Email        string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser,
		arg.Email,
		arg.Username,
		arg.PasswordHash,
		arg.FirstName,
		arg.LastName,
		arg.Role,
	)
	return scanUser(row)
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id pgtype.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByID, id))
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByEmail, email))
}

const getUserByUsername = `-- name: GetUserByUsername :one
SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1)`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByUsername, username))
}

const listUsers = `-- name: ListUsers :many
SELECT ` + userColumns + ` FROM users ORDER BY created_at`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		i, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateUser = `-- name: UpdateUser :one
UPDATE users SET
    email = $2,
    first_name = $3,
    last_name = $4,
    password_hash = $5,
    role = $6,
    is_active = $7,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns

type UpdateUserParams struct {
	ID           pgtype.UUID
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         string
	IsActive     bool
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, updateUser,
		arg.ID,
		arg.Email,
		arg.FirstName,
		arg.LastName,
		arg.PasswordHash,
		arg.Role,
		arg.IsActive,
	)
	return scanUser(row)
}

const touchUserLogin = `-- name: TouchUserLogin :exec
UPDATE users SET last_login_at = NOW() WHERE id = $1`

func (q *Queries) TouchUserLogin(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, touchUserLogin, id)
	return err
}

const deleteUsersByUsername = `-- name: DeleteUsersByUsername :execrows
DELETE FROM users WHERE LOWER(username) = ANY($1::text[])`

// DeleteUsersByUsername expects lower-cased usernames.
func (q *Queries) DeleteUsersByUsername(ctx context.Context, usernames []string) (int64, error) {
	result, err := q.db.Exec(ctx, deleteUsersByUsername, usernames)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const countUsersByRole = `-- name: CountUsersByRole :one
SELECT COUNT(*) FROM users WHERE role = ANY($1::text[])`

func (q *Queries) CountUsersByRole(ctx context.Context, roles []string) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countUsersByRole, roles).Scan(&count)
	return count, err
}
