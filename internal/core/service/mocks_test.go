package service_test

import (
	"context"

	"github.com/strogholod/catalog/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockBackend) CreateProduct(
	ctx context.Context, p domain.Product,
) (domain.ServerResponse, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.ServerResponse), args.Error(1)
}

func (m *MockBackend) UpdateProduct(
	ctx context.Context, p domain.Product,
) (domain.ServerResponse, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.ServerResponse), args.Error(1)
}

func (m *MockBackend) DeleteProduct(
	ctx context.Context, id int, photo string,
) (domain.ServerResponse, error) {
	args := m.Called(ctx, id, photo)
	return args.Get(0).(domain.ServerResponse), args.Error(1)
}

func (m *MockBackend) UploadPhoto(
	ctx context.Context, path, category string,
) (domain.ServerResponse, error) {
	args := m.Called(ctx, path, category)
	return args.Get(0).(domain.ServerResponse), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(handle string) (string, error) {
	args := m.Called(handle)
	return args.String(0), args.Error(1)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordPriceChange(
	ctx context.Context, change domain.PriceChange,
) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

func ok(msg string) domain.ServerResponse {
	return domain.ServerResponse{Success: true, Message: msg}
}

func rejected(msg string) domain.ServerResponse {
	return domain.ServerResponse{Success: false, Message: msg}
}
