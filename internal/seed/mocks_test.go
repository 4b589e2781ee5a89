package seed

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/brightwash/catalog-server/internal/model"
)

type MockAdminUserRepository struct {
	mock.Mock
}

func (m *MockAdminUserRepository) FindByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminUser), args.Error(1)
}

func (m *MockAdminUserRepository) Create(ctx context.Context, username, passwordHash string) (*model.AdminUser, error) {
	args := m.Called(ctx, username, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminUser), args.Error(1)
}

func (m *MockAdminUserRepository) CreateFirst(ctx context.Context, username, passwordHash string) (*model.AdminUser, error) {
	args := m.Called(ctx, username, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminUser), args.Error(1)
}

func (m *MockAdminUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockPackageRepository struct {
	mock.Mock
}

func (m *MockPackageRepository) List(ctx context.Context) ([]model.Package, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Package), args.Error(1)
}

func (m *MockPackageRepository) FindByID(ctx context.Context, id int64) (*model.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Package), args.Error(1)
}

func (m *MockPackageRepository) Create(ctx context.Context, params model.PackageParams) (*model.Package, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Package), args.Error(1)
}

func (m *MockPackageRepository) Update(ctx context.Context, id int64, params model.PackageParams) (*model.Package, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Package), args.Error(1)
}

func (m *MockPackageRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPackageRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
