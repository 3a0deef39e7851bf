package repository

import (
	"context"
	"time"

	"github.com/dormitory-dev/duty-roster/backend/internal/domain"
)

func (r *Repository) CreateAdmin(admin *domain.Admin) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO admins (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	if err := r.dbpool.QueryRowContext(ctx, query, admin.Username, admin.PasswordHash).Scan(&admin.ID, &admin.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAdminByUsername(username string) (*domain.Admin, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, password_hash, created_at
		FROM admins WHERE username = $1
	`

	admin := &domain.Admin{
		Username: username,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(&admin.ID, &admin.PasswordHash, &admin.CreatedAt); err != nil {
		return nil, err
	}

	return admin, nil
}

func (r *Repository) GetAdminByID(id int64) (*domain.Admin, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT username, password_hash, created_at
		FROM admins WHERE id = $1
	`

	admin := &domain.Admin{
		ID: id,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&admin.Username, &admin.PasswordHash, &admin.CreatedAt); err != nil {
		return nil, err
	}

	return admin, nil
}
