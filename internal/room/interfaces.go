package room

import (
	"context"
	"errors"

	"github.com/kdramahub/kdramahub/internal/domain"
)

// ErrRoomNotFound indicates the requested room does not exist.
var ErrRoomNotFound = errors.New("room not found")

// ErrRoomFull indicates the room is at its participant bound. The check
// happens at join time against a read snapshot; concurrent joins near the
// boundary may still transiently overshoot.
var ErrRoomFull = errors.New("room is full")

// Manager coordinates synchronized viewing rooms over a real-time
// document store. All coordination happens through reads and writes of
// the shared room record plus push subscriptions; there is no
// server-side authority beyond what the store enforces.
type Manager interface {
	// CreateRoom allocates a room id from the store and writes the full
	// initial record with the host as first participant, playback paused
	// at zero. Store unavailability and permission rejections surface as
	// store.ErrUnavailable and store.ErrPermissionDenied respectively.
	CreateRoom(ctx context.Context, hostID, hostName, slug, episode, dramaTitle, videoURL string) (string, error)

	// JoinRoom adds or refreshes this user's participant entry. Returns
	// ErrRoomNotFound or ErrRoomFull. Re-joining with the same userID is
	// idempotent and refreshes joinedAt and lastSeen.
	JoinRoom(ctx context.Context, roomID, userID, displayName string) error

	// LeaveRoom removes this user's participant entry, then deletes the
	// room if the re-read participant count is zero. The two steps are
	// not atomic against concurrent joins; cleanup is best effort.
	LeaveRoom(ctx context.Context, roomID, userID string) error

	// UpdateLastSeen refreshes only this participant's heartbeat
	// timestamp. Nothing evicts participants whose heartbeat goes stale;
	// staleness handling is left to observers.
	UpdateLastSeen(ctx context.Context, roomID, userID string) error

	// UpdateVideoState overwrites the room's playback intent plus
	// lastUpdated. Last writer wins; no per-writer authority check.
	UpdateVideoState(ctx context.Context, roomID string, isPlaying bool, currentTime float64) error

	// SendChatMessage appends one message under a store-generated key and
	// returns the key. Messages are never overwritten.
	SendChatMessage(ctx context.Context, roomID, userID, displayName, message string) (string, error)

	// SubscribeToRoom invokes fn with the room on every change, and with
	// nil when the room no longer exists. The returned function releases
	// the subscription.
	SubscribeToRoom(roomID string, fn func(*domain.Room)) (func(), error)

	// GetActiveRooms lists all rooms, newest first. Permission failures
	// degrade to an empty list so the lobby renders gracefully.
	GetActiveRooms(ctx context.Context) ([]domain.RoomSummary, error)
}
