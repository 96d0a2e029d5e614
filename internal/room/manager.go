package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/kdramahub/kdramahub/internal/domain"
	"github.com/kdramahub/kdramahub/internal/store"
)

const roomsRoot = "rooms"

// manager implements Manager over a store.Store.
type manager struct {
	store           store.Store
	now             func() time.Time
	maxParticipants int
}

// Option configures a manager.
type Option func(*manager)

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(m *manager) {
		m.now = now
	}
}

// WithMaxParticipants overrides the room participant bound.
func WithMaxParticipants(n int) Option {
	return func(m *manager) {
		m.maxParticipants = n
	}
}

// NewManager creates a room manager backed by s.
func NewManager(s store.Store, opts ...Option) Manager {
	m := &manager{
		store:           s,
		now:             time.Now,
		maxParticipants: domain.DefaultMaxParticipants,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func roomPath(roomID string) string {
	return roomsRoot + "/" + roomID
}

// CreateRoom writes the full initial room record under a store-allocated
// id. The host is always participant #1.
func (m *manager) CreateRoom(ctx context.Context, hostID, hostName, slug, episode, dramaTitle, videoURL string) (string, error) {
	nowMs := m.now().UnixMilli()
	record := domain.Room{
		HostID:          hostID,
		HostName:        hostName,
		Slug:            slug,
		Episode:         episode,
		DramaTitle:      dramaTitle,
		VideoURL:        videoURL,
		IsPlaying:       false,
		CurrentTime:     0,
		CreatedAt:       nowMs,
		MaxParticipants: m.maxParticipants,
		Participants: map[string]domain.Participant{
			hostID: {
				DisplayName: hostName,
				JoinedAt:    nowMs,
				LastSeen:    nowMs,
			},
		},
	}

	roomID, err := m.store.Push(ctx, roomsRoot, record)
	if err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}
	return roomID, nil
}

// JoinRoom checks capacity against a read snapshot, then writes this
// participant's entry via a partial update leaving siblings untouched.
func (m *manager) JoinRoom(ctx context.Context, roomID, userID, displayName string) error {
	r, err := m.readRoom(ctx, roomID)
	if err != nil {
		return err
	}

	// Soft cap: a re-join refreshes in place and never counts twice.
	if _, present := r.Participants[userID]; !present && r.ParticipantCount() >= r.MaxParticipants {
		return ErrRoomFull
	}

	nowMs := m.now().UnixMilli()
	err = m.store.Update(ctx, map[string]any{
		participantPath(roomID, userID): domain.Participant{
			DisplayName: displayName,
			JoinedAt:    nowMs,
			LastSeen:    nowMs,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to join room %s: %w", roomID, err)
	}
	return nil
}

// LeaveRoom removes the participant entry and then best-effort deletes
// the room if nobody is left.
func (m *manager) LeaveRoom(ctx context.Context, roomID, userID string) error {
	if err := m.store.Delete(ctx, participantPath(roomID, userID)); err != nil {
		return fmt.Errorf("failed to leave room %s: %w", roomID, err)
	}

	if err := m.deleteIfEmpty(ctx, roomID); err != nil {
		// Cleanup is best effort; the room survives as a stale shell at
		// worst and the next leave retries.
		log.Printf("[ERROR] Failed to clean up room %s after leave: %v", roomID, err)
	}
	return nil
}

// deleteIfEmpty re-reads the room and deletes it when no participants
// remain. The read and the delete are two store round-trips, so a join
// landing between them can race the delete. If the store ever grows an
// atomic delete-if-empty primitive, this is the only place to swap it in.
func (m *manager) deleteIfEmpty(ctx context.Context, roomID string) error {
	data, err := m.store.Get(ctx, roomPath(roomID))
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}

	var r domain.Room
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("failed to decode room %s: %w", roomID, err)
	}
	if r.ParticipantCount() > 0 {
		return nil
	}
	return m.store.Delete(ctx, roomPath(roomID))
}

// UpdateLastSeen refreshes one participant's heartbeat timestamp.
func (m *manager) UpdateLastSeen(ctx context.Context, roomID, userID string) error {
	err := m.store.Update(ctx, map[string]any{
		participantPath(roomID, userID) + "/lastSeen": m.now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to update last seen in room %s: %w", roomID, err)
	}
	return nil
}

// UpdateVideoState overwrites playback intent. Advisory last-writer-wins:
// any participant may call this and the later write wins in full.
func (m *manager) UpdateVideoState(ctx context.Context, roomID string, isPlaying bool, currentTime float64) error {
	err := m.store.Update(ctx, map[string]any{
		roomPath(roomID) + "/isPlaying":   isPlaying,
		roomPath(roomID) + "/currentTime": currentTime,
		roomPath(roomID) + "/lastUpdated": m.now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to update video state in room %s: %w", roomID, err)
	}
	return nil
}

// SendChatMessage appends one message under a fresh push key so
// concurrent senders never overwrite each other.
func (m *manager) SendChatMessage(ctx context.Context, roomID, userID, displayName, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("chat message cannot be empty")
	}

	key, err := m.store.Push(ctx, roomPath(roomID)+"/chat", domain.ChatMessage{
		UserID:      userID,
		DisplayName: displayName,
		Message:     message,
		Timestamp:   m.now().UnixMilli(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to send chat message to room %s: %w", roomID, err)
	}
	return key, nil
}

// SubscribeToRoom adapts the raw store subscription into room snapshots.
// fn receives nil when the room is gone or its snapshot cannot be read.
func (m *manager) SubscribeToRoom(roomID string, fn func(*domain.Room)) (func(), error) {
	unsubscribe, err := m.store.Subscribe(roomPath(roomID), func(data json.RawMessage) {
		if data == nil {
			fn(nil)
			return
		}
		var r domain.Room
		if err := json.Unmarshal(data, &r); err != nil {
			log.Printf("[ERROR] Failed to decode room %s snapshot: %v", roomID, err)
			fn(nil)
			return
		}
		r.ID = roomID
		fn(&r)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to room %s: %w", roomID, err)
	}
	return unsubscribe, nil
}

// GetActiveRooms lists every room, newest first. Permission failures
// degrade to an empty list.
func (m *manager) GetActiveRooms(ctx context.Context) ([]domain.RoomSummary, error) {
	data, err := m.store.Get(ctx, roomsRoot)
	if err != nil {
		if errors.Is(err, store.ErrPermissionDenied) {
			return []domain.RoomSummary{}, nil
		}
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	if data == nil {
		return []domain.RoomSummary{}, nil
	}

	var rooms map[string]domain.Room
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode room list: %w", err)
	}

	summaries := make([]domain.RoomSummary, 0, len(rooms))
	for id, r := range rooms {
		summaries = append(summaries, domain.RoomSummary{
			RoomID:           id,
			DramaTitle:       r.DramaTitle,
			Slug:             r.Slug,
			Episode:          r.Episode,
			HostName:         r.HostName,
			ParticipantCount: r.ParticipantCount(),
			MaxParticipants:  r.MaxParticipants,
			CreatedAt:        r.CreatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt > summaries[j].CreatedAt
	})
	return summaries, nil
}

// readRoom fetches and decodes one room, mapping absence to
// ErrRoomNotFound.
func (m *manager) readRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	data, err := m.store.Get(ctx, roomPath(roomID))
	if err != nil {
		return nil, fmt.Errorf("failed to read room %s: %w", roomID, err)
	}
	if data == nil {
		return nil, ErrRoomNotFound
	}

	var r domain.Room
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode room %s: %w", roomID, err)
	}
	r.ID = roomID
	return &r, nil
}

func participantPath(roomID, userID string) string {
	return roomPath(roomID) + "/participants/" + userID
}
