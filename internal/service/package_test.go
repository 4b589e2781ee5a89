package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/brightwash/catalog-server/internal/errors"
	"github.com/brightwash/catalog-server/internal/model"
)

func priceInput(name, price, membership string) PackageInput {
	in := PackageInput{Name: name}
	if price != "" {
		in.Price = json.RawMessage(price)
	}
	if membership != "" {
		in.MembershipPrice = json.RawMessage(membership)
	}
	return in
}

func TestPackageService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("nil list becomes empty", func(t *testing.T) {
		repo := new(MockPackageRepository)
		repo.On("List", ctx).Return(nil, nil)

		packages, err := NewPackageService(repo).List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, packages)
		assert.Empty(t, packages)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := new(MockPackageRepository)
		repo.On("List", ctx).Return(nil, errors.New("boom"))

		_, err := NewPackageService(repo).List(ctx)
		assert.Equal(t, apperrors.ErrCodeDatabase, apperrors.GetCode(err))
	})
}

func TestPackageService_Get(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPackageRepository)
	repo.On("FindByID", ctx, int64(1)).Return(&model.Package{ID: 1, Name: "Express"}, nil)
	repo.On("FindByID", ctx, int64(2)).Return(nil, nil)
	svc := NewPackageService(repo)

	pkg, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Express", pkg.Name)

	_, err = svc.Get(ctx, 2)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
}

func TestPackageService_CreateValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   PackageInput
		message string
	}{
		{"negative price", priceInput("X", "-1", "5"), msgPackagePrice},
		{"negative membership price", priceInput("X", "5", "-0.5"), msgPackagePrice},
		{"missing name", priceInput("", "5", "5"), msgPackageRequired},
		{"blank name", priceInput("   ", "5", "5"), msgPackageRequired},
		{"missing price", priceInput("X", "", "5"), msgPackageRequired},
		{"null membership price", priceInput("X", "5", "null"), msgPackageRequired},
		{"empty string price", priceInput("X", `""`, "5"), msgPackageRequired},
		{"non numeric string", priceInput("X", `"abc"`, "5"), msgPackagePrice},
		{"boolean price", priceInput("X", "true", "5"), msgPackagePrice},
		{"NaN string", priceInput("X", `"NaN"`, "5"), msgPackagePrice},
		{"too large", priceInput("X", "1e12", "5"), msgPackagePrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPackageRepository)

			_, err := NewPackageService(repo).Create(ctx, tt.input)
			require.Error(t, err)
			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
			assert.Equal(t, tt.message, appErr.Message)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	displayOrder := []struct {
		name  string
		raw   string
		field string
	}{
		{"display order above int32", "3000000000", "display_order"},
		{"display order below int32", "-2147483649", "display_order"},
		{"fractional display order", "1.5", "display_order"},
		{"non numeric display order", `"first"`, "display_order"},
		{"boolean display order", "true", "display_order"},
	}
	for _, tt := range displayOrder {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPackageRepository)
			in := priceInput("X", "5", "5")
			in.DisplayOrder = json.RawMessage(tt.raw)

			_, err := NewPackageService(repo).Create(ctx, in)
			require.Error(t, err)
			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeInvalidInput, appErr.Code)
			assert.Equal(t, map[string]string{"field": tt.field}, appErr.Details)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("display order at the int32 bounds", func(t *testing.T) {
		for raw, want := range map[string]int{
			"2147483647":  2147483647,
			"-2147483648": -2147483648,
			`"7"`:         7,
			"null":        0,
		} {
			in := priceInput("X", "5", "5")
			in.DisplayOrder = json.RawMessage(raw)

			params, err := in.params()
			require.NoError(t, err, raw)
			assert.Equal(t, want, params.DisplayOrder, raw)
		}
	})

	t.Run("invalid subscription url", func(t *testing.T) {
		repo := new(MockPackageRepository)
		in := priceInput("X", "5", "5")
		in.SubscriptionURL = "not a url"

		_, err := NewPackageService(repo).Create(ctx, in)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
	})
}

func TestPackageService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("zero prices are accepted with defaults", func(t *testing.T) {
		repo := new(MockPackageRepository)
		want := model.PackageParams{Name: "X", Features: model.Features{}}
		repo.On("Create", ctx, want).Return(&model.Package{ID: 9, Name: "X"}, nil)

		pkg, err := NewPackageService(repo).Create(ctx, priceInput("X", "0", "0"))
		require.NoError(t, err)
		assert.Equal(t, int64(9), pkg.ID)
		repo.AssertExpectations(t)
	})

	t.Run("numeric strings and feature cleanup", func(t *testing.T) {
		repo := new(MockPackageRepository)
		in := priceInput(" Deluxe ", `"15.50"`, "29.999")
		in.Features = []string{"Wash", "  ", "", " Wax "}
		in.SubscriptionURL = "https://example.com/deluxe"
		in.DisplayOrder = json.RawMessage(`"2"`)
		in.IsFeatured = true

		want := model.PackageParams{
			Name:            "Deluxe",
			Price:           15.5,
			MembershipPrice: 30,
			Features:        model.Features{"Wash", "Wax"},
			SubscriptionURL: "https://example.com/deluxe",
			DisplayOrder:    2,
			IsFeatured:      true,
		}
		repo.On("Create", ctx, want).Return(&model.Package{ID: 1}, nil)

		_, err := NewPackageService(repo).Create(ctx, in)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestPackageService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id is reported before invalid input", func(t *testing.T) {
		repo := new(MockPackageRepository)
		repo.On("FindByID", ctx, int64(5)).Return(nil, nil)

		_, err := NewPackageService(repo).Update(ctx, 5, priceInput("", "-1", ""))
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid input on existing package", func(t *testing.T) {
		repo := new(MockPackageRepository)
		repo.On("FindByID", ctx, int64(5)).Return(&model.Package{ID: 5}, nil)

		_, err := NewPackageService(repo).Update(ctx, 5, priceInput("X", "-1", "1"))
		assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
	})

	t.Run("replaces fields", func(t *testing.T) {
		repo := new(MockPackageRepository)
		repo.On("FindByID", ctx, int64(5)).Return(&model.Package{ID: 5, Name: "Old"}, nil)
		want := model.PackageParams{Name: "New", Price: 1, MembershipPrice: 2, Features: model.Features{}}
		repo.On("Update", ctx, int64(5), want).Return(&model.Package{ID: 5, Name: "New"}, nil)

		pkg, err := NewPackageService(repo).Update(ctx, 5, priceInput("New", "1", "2"))
		require.NoError(t, err)
		assert.Equal(t, "New", pkg.Name)
	})

	t.Run("row removed between lookup and update", func(t *testing.T) {
		repo := new(MockPackageRepository)
		repo.On("FindByID", ctx, int64(5)).Return(&model.Package{ID: 5}, nil)
		repo.On("Update", ctx, int64(5), mock.Anything).Return(nil, nil)

		_, err := NewPackageService(repo).Update(ctx, 5, priceInput("New", "1", "2"))
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})
}

func TestPackageService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("returns id and name", func(t *testing.T) {
		repo := new(MockPackageRepository)
		repo.On("FindByID", ctx, int64(3)).Return(&model.Package{ID: 3, Name: "Ultimate"}, nil)
		repo.On("Delete", ctx, int64(3)).Return(true, nil)

		deleted, err := NewPackageService(repo).Delete(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, &DeletedPackage{ID: 3, Name: "Ultimate"}, deleted)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := new(MockPackageRepository)
		repo.On("FindByID", ctx, int64(3)).Return(nil, nil)

		_, err := NewPackageService(repo).Delete(ctx, 3)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"12", 12, true},
		{"12.346", 12.35, true},
		{`"9.99"`, 9.99, true},
		{`" 7 "`, 7, true},
		{"0", 0, true},
		{"-0.01", 0, false},
		{`"12abc"`, 0, false},
		{`"Infinity"`, 0, false},
		{"[]", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parsePrice(json.RawMessage(tt.raw))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}
