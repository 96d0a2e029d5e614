package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kdramahub/kdramahub/internal/domain"
)

// Manager is a mock implementation of room.Manager
type Manager struct {
	mock.Mock
}

// CreateRoom allocates a room id and writes the initial record
func (m *Manager) CreateRoom(ctx context.Context, hostID, hostName, slug, episode, dramaTitle, videoURL string) (string, error) {
	args := m.Called(ctx, hostID, hostName, slug, episode, dramaTitle, videoURL)
	return args.String(0), args.Error(1)
}

// JoinRoom adds or refreshes this user's participant entry
func (m *Manager) JoinRoom(ctx context.Context, roomID, userID, displayName string) error {
	args := m.Called(ctx, roomID, userID, displayName)
	return args.Error(0)
}

// LeaveRoom removes this user's participant entry
func (m *Manager) LeaveRoom(ctx context.Context, roomID, userID string) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

// UpdateLastSeen refreshes this participant's heartbeat timestamp
func (m *Manager) UpdateLastSeen(ctx context.Context, roomID, userID string) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

// UpdateVideoState overwrites the room's playback intent
func (m *Manager) UpdateVideoState(ctx context.Context, roomID string, isPlaying bool, currentTime float64) error {
	args := m.Called(ctx, roomID, isPlaying, currentTime)
	return args.Error(0)
}

// SendChatMessage appends one message under a store-generated key
func (m *Manager) SendChatMessage(ctx context.Context, roomID, userID, displayName, message string) (string, error) {
	args := m.Called(ctx, roomID, userID, displayName, message)
	return args.String(0), args.Error(1)
}

// SubscribeToRoom invokes fn with the room on every change
func (m *Manager) SubscribeToRoom(roomID string, fn func(*domain.Room)) (func(), error) {
	args := m.Called(roomID, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

// GetActiveRooms lists all rooms, newest first
func (m *Manager) GetActiveRooms(ctx context.Context) ([]domain.RoomSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoomSummary), args.Error(1)
}
