package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of store.Store
type Store struct {
	mock.Mock
}

// Get reads the value at path once
func (m *Store) Get(ctx context.Context, path string) (json.RawMessage, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// Set writes value at path
func (m *Store) Set(ctx context.Context, path string, value any) error {
	args := m.Called(ctx, path, value)
	return args.Error(0)
}

// Update applies a partial multi-path update
func (m *Store) Update(ctx context.Context, values map[string]any) error {
	args := m.Called(ctx, values)
	return args.Error(0)
}

// Delete removes the value at path
func (m *Store) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

// Push appends value under a generated child key of path
func (m *Store) Push(ctx context.Context, path string, value any) (string, error) {
	args := m.Called(ctx, path, value)
	return args.String(0), args.Error(1)
}

// Subscribe registers fn for the value at path
func (m *Store) Subscribe(path string, fn func(json.RawMessage)) (func(), error) {
	args := m.Called(path, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}
