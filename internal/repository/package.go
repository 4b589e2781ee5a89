package repository

import (
	"context"

	"github.com/brightwash/catalog-server/internal/model"
)

type PackageRepository interface {
	List(ctx context.Context) ([]model.Package, error)
	FindByID(ctx context.Context, id int64) (*model.Package, error)
	Create(ctx context.Context, params model.PackageParams) (*model.Package, error)
	// Update replaces every mutable field. It returns nil when id is unknown.
	Update(ctx context.Context, id int64, params model.PackageParams) (*model.Package, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}

type packageRepo struct {
	db sqlxDB
}

func NewPackageRepository(db sqlxDB) PackageRepository {
	return &packageRepo{db: db}
}

const packageColumns = `id, name, price, membership_price, description, features,
	subscription_url, display_order, is_featured, created_at, updated_at`

func (r *packageRepo) List(ctx context.Context) ([]model.Package, error) {
	packages := []model.Package{}
	err := r.db.SelectContext(ctx, &packages, `
		SELECT `+packageColumns+`
		FROM packages
		ORDER BY display_order ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *packageRepo) FindByID(ctx context.Context, id int64) (*model.Package, error) {
	var pkg model.Package
	err := r.db.GetContext(ctx, &pkg, `
		SELECT `+packageColumns+` FROM packages WHERE id = $1
	`, id)
	return HandleNotFound(&pkg, err)
}

func (r *packageRepo) Create(ctx context.Context, params model.PackageParams) (*model.Package, error) {
	var pkg model.Package
	err := r.db.GetContext(ctx, &pkg, `
		INSERT INTO packages (
			name, price, membership_price, description, features,
			subscription_url, display_order, is_featured
		)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8)
		RETURNING `+packageColumns,
		params.Name, params.Price, params.MembershipPrice, params.Description,
		params.Features, params.SubscriptionURL, params.DisplayOrder, params.IsFeatured,
	)
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *packageRepo) Update(ctx context.Context, id int64, params model.PackageParams) (*model.Package, error) {
	var pkg model.Package
	err := r.db.GetContext(ctx, &pkg, `
		UPDATE packages SET
			name = $1,
			price = $2,
			membership_price = $3,
			description = $4,
			features = $5::jsonb,
			subscription_url = $6,
			display_order = $7,
			is_featured = $8,
			updated_at = NOW()
		WHERE id = $9
		RETURNING `+packageColumns,
		params.Name, params.Price, params.MembershipPrice, params.Description,
		params.Features, params.SubscriptionURL, params.DisplayOrder, params.IsFeatured,
		id,
	)
	return HandleNotFound(&pkg, err)
}

func (r *packageRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *packageRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM packages`)
	return count, err
}
