package postgres

import (
	"context"
	"errors"
	"fmt"

	"archetype-bot/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// UserRepository is the registry of everyone who ever talked to the bot.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Upsert registers a user or refreshes their profile fields on /start.
func (r *UserRepository) Upsert(ctx context.Context, user domain.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (telegram_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username=EXCLUDED.username, first_name=EXCLUDED.first_name, last_name=EXCLUDED.last_name
	`, user.TelegramID, user.Username, user.FirstName, user.LastName)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (r *UserRepository) Get(ctx context.Context, telegramID int64) (domain.User, error) {
	var user domain.User
	err := r.pool.QueryRow(ctx, `
		SELECT telegram_id, username, first_name, last_name, created_at
		FROM users WHERE telegram_id=$1
	`, telegramID).Scan(&user.TelegramID, &user.Username, &user.FirstName, &user.LastName, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, fmt.Errorf("user %d: %w", telegramID, pgx.ErrNoRows)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Search finds users by username or first name prefix, for the admin console.
func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT telegram_id, username, first_name, last_name, created_at
		FROM users
		WHERE username ILIKE $1 || '%' OR first_name ILIKE $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *UserRepository) List(ctx context.Context, limit int) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT telegram_id, username, first_name, last_name, created_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.TelegramID, &user.Username, &user.FirstName, &user.LastName, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	return users, nil
}
