package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockAssetStore is a mock implementation of storage.AssetStore
type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockAssetStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockAssetStore) URL(key string) string {
	args := m.Called(key)
	return args.String(0)
}
