package service

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/brightwash/catalog-server/internal/errors"
	"github.com/brightwash/catalog-server/internal/model"
	"github.com/brightwash/catalog-server/internal/repository"
)

const (
	msgPackageRequired = "Name, price, and membership_price are required"
	msgPackagePrice    = "Price values must be valid positive numbers"
)

// PackageInput is the request body for creating or replacing a package.
// Prices and display order are kept raw so that both JSON numbers and numeric
// strings are accepted.
type PackageInput struct {
	Name            string          `json:"name"`
	Price           json.RawMessage `json:"price"`
	MembershipPrice json.RawMessage `json:"membership_price"`
	Description     string          `json:"description"`
	Features        []string        `json:"features"`
	SubscriptionURL string          `json:"subscription_url"`
	DisplayOrder    json.RawMessage `json:"display_order"`
	IsFeatured      bool            `json:"is_featured"`
}

// packageFields carries the field rules checked after prices are parsed.
type packageFields struct {
	Name            string   `validate:"required,max=255"`
	Price           float64  `validate:"gte=0,lte=99999999.99"`
	MembershipPrice float64  `validate:"gte=0,lte=99999999.99"`
	Features        []string `validate:"dive,max=500"`
	SubscriptionURL string   `validate:"omitempty,max=2048,url"`
	DisplayOrder    int64    `validate:"gte=-2147483648,lte=2147483647"`
}

// DeletedPackage identifies a removed package.
type DeletedPackage struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type PackageService struct {
	packages repository.PackageRepository
}

func NewPackageService(packages repository.PackageRepository) *PackageService {
	return &PackageService{packages: packages}
}

func (s *PackageService) List(ctx context.Context) ([]model.Package, error) {
	packages, err := s.packages.List(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if packages == nil {
		packages = []model.Package{}
	}
	return packages, nil
}

func (s *PackageService) Get(ctx context.Context, id int64) (*model.Package, error) {
	pkg, err := s.packages.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if pkg == nil {
		return nil, apperrors.NotFound("Package")
	}
	return pkg, nil
}

func (s *PackageService) Create(ctx context.Context, in PackageInput) (*model.Package, error) {
	params, err := in.params()
	if err != nil {
		return nil, err
	}

	pkg, err := s.packages.Create(ctx, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return pkg, nil
}

// Update replaces every mutable field. An unknown id is reported before any
// input problem.
func (s *PackageService) Update(ctx context.Context, id int64, in PackageInput) (*model.Package, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	params, err := in.params()
	if err != nil {
		return nil, err
	}

	pkg, err := s.packages.Update(ctx, id, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if pkg == nil {
		return nil, apperrors.NotFound("Package")
	}
	return pkg, nil
}

func (s *PackageService) Delete(ctx context.Context, id int64) (*DeletedPackage, error) {
	pkg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	deleted, err := s.packages.Delete(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if !deleted {
		return nil, apperrors.NotFound("Package")
	}
	return &DeletedPackage{ID: pkg.ID, Name: pkg.Name}, nil
}

func (in PackageInput) params() (model.PackageParams, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || isAbsent(in.Price) || isAbsent(in.MembershipPrice) {
		return model.PackageParams{}, apperrors.ValidationError(msgPackageRequired)
	}

	price, ok := parsePrice(in.Price)
	if !ok {
		return model.PackageParams{}, apperrors.ValidationError(msgPackagePrice)
	}
	membershipPrice, ok := parsePrice(in.MembershipPrice)
	if !ok {
		return model.PackageParams{}, apperrors.ValidationError(msgPackagePrice)
	}

	displayOrder, ok := parseDisplayOrder(in.DisplayOrder)
	if !ok {
		return model.PackageParams{}, invalidField("display_order", "must be an integer")
	}

	features := model.Features{}
	for _, f := range in.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}

	fields := packageFields{
		Name:            name,
		Price:           price,
		MembershipPrice: membershipPrice,
		Features:        features,
		SubscriptionURL: strings.TrimSpace(in.SubscriptionURL),
		DisplayOrder:    displayOrder,
	}
	if err := validate.Struct(fields); err != nil {
		fe := firstFieldError(err)
		if fe == nil {
			return model.PackageParams{}, apperrors.ValidationError(err.Error())
		}
		switch fe.Field() {
		case "Price", "MembershipPrice":
			return model.PackageParams{}, apperrors.ValidationError(msgPackagePrice)
		case "Name":
			return model.PackageParams{}, invalidField("name", "must be at most 255 characters")
		case "SubscriptionURL":
			return model.PackageParams{}, invalidField("subscription_url", "must be a valid URL")
		case "DisplayOrder":
			return model.PackageParams{}, invalidField("display_order", "must fit in a 32-bit integer")
		default:
			return model.PackageParams{}, invalidField("features", "each feature must be at most 500 characters")
		}
	}

	return model.PackageParams{
		Name:            fields.Name,
		Price:           fields.Price,
		MembershipPrice: fields.MembershipPrice,
		Description:     in.Description,
		Features:        fields.Features,
		SubscriptionURL: fields.SubscriptionURL,
		DisplayOrder:    int(fields.DisplayOrder),
		IsFeatured:      in.IsFeatured,
	}, nil
}

func invalidField(field, reason string) *apperrors.AppError {
	return apperrors.InvalidInput(field, reason).WithDetails(map[string]string{"field": field})
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`))
}

// parsePrice accepts a JSON number or a string holding one. The result is
// finite and rounded to cents.
func parsePrice(raw json.RawMessage) (float64, bool) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return 0, false
		}
		text = num.String()
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return math.Round(v*100) / 100, true
}

// parseDisplayOrder accepts an integer or a string holding one. Absent, null
// and "" mean 0.
func parseDisplayOrder(raw json.RawMessage) (int64, bool) {
	if isAbsent(raw) {
		return 0, true
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return 0, false
		}
		text = num.String()
	}

	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
