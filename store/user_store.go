package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/sthar2820/portfolio-website/database"
	"github.com/sthar2820/portfolio-website/models"
)

type UserStore struct {
	client *database.DBClient
}

func NewUserStore(client *database.DBClient) *UserStore {
	return &UserStore{client: client}
}

// UpsertAdmin creates the admin row, or refreshes its password hash when the
// email already exists.
func (s *UserStore) UpsertAdmin(ctx context.Context, email string, hashedPassword []byte) (*models.AdminUser, error) {
	d := s.client.Dialect
	query := fmt.Sprintf(`
		INSERT INTO admin_users (email, hashed_password)
		VALUES (%s, %s)
		ON CONFLICT (email) DO UPDATE SET hashed_password = excluded.hashed_password, updated_at = CURRENT_TIMESTAMP
	`, d.Placeholder(1), d.Placeholder(2))

	if _, err := s.client.DB.ExecContext(ctx, query, email, hashedPassword); err != nil {
		return nil, fmt.Errorf("failed to upsert admin user: %w", err)
	}

	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	log.Printf("Admin user ready: ID=%d, Email=%s", user.ID, user.Email)
	return user, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	user := &models.AdminUser{}
	query := fmt.Sprintf(`
		SELECT id, email, hashed_password, created_at, updated_at
		FROM admin_users
		WHERE email = %s
	`, s.client.Dialect.Placeholder(1))

	err := s.client.DB.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email '%s': %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}
