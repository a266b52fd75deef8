package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"boma/internal/models"
	"boma/internal/repository"
)

const userColumns = `id, username, email, password_hash, role, verification_state, created_at, updated_at`

type userRepo struct {
	pool *pgxpool.Pool
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.VerificationState,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return models.User{}, mapError(err)
	}
	return user, nil
}

func (r userRepo) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.VerificationState,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return mapError(err)
}

func (r userRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r userRepo) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r userRepo) UpdateProfile(ctx context.Context, user models.User) error {
	const query = `
		UPDATE users SET username = $2, email = $3, password_hash = $4, updated_at = $5
		WHERE id = $1
	`
	return affectOne(r.pool.Exec(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.UpdatedAt))
}

func (r userRepo) UpdateRole(ctx context.Context, id string, role models.Role, state models.VerificationState) error {
	const query = `UPDATE users SET role = $2, verification_state = $3, updated_at = NOW() WHERE id = $1`
	return affectOne(r.pool.Exec(ctx, query, id, role, state))
}

func (r userRepo) UpdateVerificationState(ctx context.Context, id string, state models.VerificationState) error {
	const query = `UPDATE users SET verification_state = $2, updated_at = NOW() WHERE id = $1`
	return affectOne(r.pool.Exec(ctx, query, id, state))
}

func (r userRepo) List(ctx context.Context, filter repository.UserFilter) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []any
	if filter.Role != "" {
		args = append(args, filter.Role)
		query += ` WHERE role = $1`
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	return collect(rows, err, scanUser)
}

func (r userRepo) Delete(ctx context.Context, id string) error {
	return affectOne(r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id))
}
