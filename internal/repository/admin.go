package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/brightwash/catalog-server/internal/model"
)

// ErrAdminExists is returned by CreateFirst when an admin account is already
// present.
var ErrAdminExists = errors.New("admin user already exists")

// adminSetupLockKey serialises concurrent first-admin creation.
const adminSetupLockKey int64 = 0x61646d696e

type AdminUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.AdminUser, error)
	Create(ctx context.Context, username, passwordHash string) (*model.AdminUser, error)
	// CreateFirst inserts the account only if no admin exists yet.
	CreateFirst(ctx context.Context, username, passwordHash string) (*model.AdminUser, error)
	Count(ctx context.Context) (int, error)
}

type adminUserRepo struct {
	db txDB
}

func NewAdminUserRepository(db txDB) AdminUserRepository {
	return &adminUserRepo{db: db}
}

func (r *adminUserRepo) FindByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	var user model.AdminUser
	err := r.db.GetContext(ctx, &user, `
		SELECT id, username, password_hash, created_at
		FROM admin_users WHERE username = $1
	`, username)
	return HandleNotFound(&user, err)
}

func (r *adminUserRepo) Create(ctx context.Context, username, passwordHash string) (*model.AdminUser, error) {
	return insertAdmin(ctx, r.db, username, passwordHash)
}

func (r *adminUserRepo) CreateFirst(ctx context.Context, username, passwordHash string) (*model.AdminUser, error) {
	var user *model.AdminUser
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, adminSetupLockKey); err != nil {
			return err
		}

		count, err := countAdmins(ctx, tx)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAdminExists
		}

		user, err = insertAdmin(ctx, tx, username, passwordHash)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *adminUserRepo) Count(ctx context.Context) (int, error) {
	return countAdmins(ctx, r.db)
}

func insertAdmin(ctx context.Context, db sqlxDB, username, passwordHash string) (*model.AdminUser, error) {
	var user model.AdminUser
	err := db.GetContext(ctx, &user, `
		INSERT INTO admin_users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, created_at
	`, username, passwordHash)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func countAdmins(ctx context.Context, db sqlxDB) (int, error) {
	var count int
	err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM admin_users`)
	return count, err
}
