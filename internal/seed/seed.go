// Package seed populates an empty catalog with the default wash packages and,
// when credentials are supplied, an initial admin account.
package seed

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/brightwash/catalog-server/internal/database"
	"github.com/brightwash/catalog-server/internal/model"
	"github.com/brightwash/catalog-server/internal/repository"
	"github.com/brightwash/catalog-server/internal/util"
)

// DefaultPackages is the catalog a fresh install starts with.
var DefaultPackages = []model.PackageParams{
	{
		Name:            "Express",
		Price:           8.00,
		MembershipPrice: 19.95,
		Description:     "Quick and efficient basic wash",
		Features:        model.Features{"Exterior Wash", "Bug Remover", "Manual hand dry", "Free Vacuum"},
		SubscriptionURL: "https://subscriptions.helcim.com/subscribe/fgf611yoa5halqhpu9xnk7ne2ywdj",
		DisplayOrder:    1,
	},
	{
		Name:            "Deluxe",
		Price:           11.00,
		MembershipPrice: 26.95,
		Description:     "Enhanced cleaning with premium features",
		Features:        model.Features{"Everything in Express", "Tire Scrub", "Triple Foam Conditioner"},
		SubscriptionURL: "https://subscriptions.helcim.com/subscribe/fy33xvbst8mt14bxb26dnkkteovrz",
		DisplayOrder:    2,
	},
	{
		Name:            "Ultimate",
		Price:           15.00,
		MembershipPrice: 33.95,
		Description:     "Complete care with maximum protection",
		Features:        model.Features{"Everything in Deluxe and Express", "Wheel Cleaner", "Triple Foam Conditioner w/ Wax", "Under Body Wash"},
		SubscriptionURL: "https://subscriptions.helcim.com/subscribe/fgce5ftrwg4z3ddxjkjgd8xnahomk",
		DisplayOrder:    3,
	},
	{
		Name:            "Platinum",
		Price:           20.00,
		MembershipPrice: 38.99,
		Description:     "Ultimate care with all premium features",
		Features:        model.Features{"Everything in Ultimate, Deluxe, and Express", "Tire Shine", "Tire Cleaner"},
		SubscriptionURL: "https://subscriptions.helcim.com/subscribe/f45b2d5ug0g7r2csigevm7gok1j90",
		DisplayOrder:    4,
		IsFeatured:      true,
	},
}

type Result struct {
	PackagesCreated int
	AdminCreated    bool
}

// PackageTx runs fn with a package repository bound to a single transaction.
// The transaction commits only if fn returns nil.
type PackageTx func(ctx context.Context, fn func(repository.PackageRepository) error) error

type transactor interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

// InTx returns a PackageTx backed by db.
func InTx(db transactor) PackageTx {
	return func(ctx context.Context, fn func(repository.PackageRepository) error) error {
		return db.WithTx(ctx, func(tx *sqlx.Tx) error {
			return fn(repository.NewPackageRepository(tx))
		})
	}
}

type Seeder struct {
	packages PackageTx
	admins   repository.AdminUserRepository
}

func NewSeeder(packages PackageTx, admins repository.AdminUserRepository) *Seeder {
	return &Seeder{packages: packages, admins: admins}
}

// Packages inserts DefaultPackages when the catalog is empty. A catalog with
// any rows is left alone so re-running never duplicates entries. The count
// and the inserts share one transaction: either every default lands or none.
func (s *Seeder) Packages(ctx context.Context) (int, error) {
	created := 0
	err := s.packages(ctx, func(packages repository.PackageRepository) error {
		count, err := packages.Count(ctx)
		if err != nil {
			return fmt.Errorf("count packages: %w", err)
		}
		if count > 0 {
			log.Info().Int("existing", count).Msg("packages already present, skipping")
			return nil
		}

		for _, params := range DefaultPackages {
			pkg, err := packages.Create(ctx, params)
			if err != nil {
				return fmt.Errorf("create package %q: %w", params.Name, err)
			}
			log.Info().Int64("id", pkg.ID).Str("name", pkg.Name).Msg("package inserted")
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// Admin creates the named account unless it already exists.
func (s *Seeder) Admin(ctx context.Context, username, password string) (bool, error) {
	existing, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("find admin: %w", err)
	}
	if existing != nil {
		log.Warn().Str("username", util.MaskUsername(username)).Msg("admin user already exists, skipping")
		return false, nil
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.admins.Create(ctx, username, hash)
	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	log.Info().Int64("id", user.ID).Str("username", util.MaskUsername(user.Username)).Msg("admin user created")
	return true, nil
}

// Run seeds packages, then the admin when both credentials are non-empty.
func (s *Seeder) Run(ctx context.Context, username, password string) (Result, error) {
	var res Result

	n, err := s.Packages(ctx)
	res.PackagesCreated = n
	if err != nil {
		return res, err
	}

	if username == "" || password == "" {
		return res, nil
	}
	res.AdminCreated, err = s.Admin(ctx, username, password)
	return res, err
}
