package room

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kdramahub/kdramahub/internal/domain"
	"github.com/kdramahub/kdramahub/internal/store"
	storememory "github.com/kdramahub/kdramahub/internal/store/memory"
	storemocks "github.com/kdramahub/kdramahub/internal/store/mocks"
)

func newTestManager(t *testing.T, opts ...Option) (Manager, *storememory.Store) {
	t.Helper()
	s := storememory.New()
	return NewManager(s, opts...), s
}

func TestManager_CreateRoom(t *testing.T) {
	ctx := context.Background()
	m, s := newTestManager(t)

	roomID, err := m.CreateRoom(ctx, "u1", "Alice", "my-drama", "3", "My Drama", "https://v/ep3")
	require.NoError(t, err)
	assert.NotEmpty(t, roomID)

	data, err := s.Get(ctx, "rooms/"+roomID)
	require.NoError(t, err)
	require.NotNil(t, data)

	var r domain.Room
	require.NoError(t, json.Unmarshal(data, &r))
	assert.Equal(t, "u1", r.HostID)
	assert.Equal(t, "Alice", r.HostName)
	assert.Equal(t, "my-drama", r.Slug)
	assert.Equal(t, "3", r.Episode)
	assert.False(t, r.IsPlaying)
	assert.Zero(t, r.CurrentTime)
	assert.Equal(t, domain.DefaultMaxParticipants, r.MaxParticipants)

	// The host is always participant #1.
	require.Len(t, r.Participants, 1)
	host := r.Participants["u1"]
	assert.Equal(t, "Alice", host.DisplayName)
	assert.NotZero(t, host.JoinedAt)
}

func TestManager_CreateRoom_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	st := &storemocks.Store{}
	st.On("Push", ctx, "rooms", mock.Anything).Return("", store.ErrUnavailable)

	m := NewManager(st)
	_, err := m.CreateRoom(ctx, "u1", "Alice", "my-drama", "3", "My Drama", "https://v/ep3")
	assert.ErrorIs(t, err, store.ErrUnavailable)
	st.AssertExpectations(t)
}

func TestManager_JoinRoom(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	roomID, err := m.CreateRoom(ctx, "u1", "Alice", "my-drama", "3", "My Drama", "https://v/ep3")
	require.NoError(t, err)

	require.NoError(t, m.JoinRoom(ctx, roomID, "u2", "Bob"))

	rooms, err := m.GetActiveRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 2, rooms[0].ParticipantCount)
}

func TestManager_JoinRoom_NotFound(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	err := m.JoinRoom(ctx, "missing", "u2", "Bob")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestManager_JoinRoom_Idempotent(t *testing.T) {
	ctx := context.Background()

	times := []int64{1000, 2000, 3000}
	idx := 0
	m, s := newTestManager(t, WithClock(func() time.Time {
		ts := time.UnixMilli(times[idx])
		if idx < len(times)-1 {
			idx++
		}
		return ts
	}))

	roomID, err := m.CreateRoom(ctx, "u1", "Alice", "my-drama", "3", "My Drama", "https://v/ep3")
	require.NoError(t, err)

	require.NoError(t, m.JoinRoom(ctx, roomID, "u2", "Bob"))
	require.NoError(t, m.JoinRoom(ctx, roomID, "u2", "Bob"))

	data, err := s.Get(ctx, "rooms/"+roomID)
	require.NoError(t, err)
	var r domain.Room
	require.NoError(t, json.Unmarshal(data, &r))

	// Exactly one entry for u2, refreshed to the second join's time.
	require.Len(t, r.Participants, 2)
	assert.EqualValues(t, 3000, r.Participants["u2"].LastSeen)
}

func TestManager_JoinRoom_Full(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, WithMaxParticipants(2))

	roomID, err := m.CreateRoom(ctx, "u1", "Alice", "my-drama", "3", "My Drama", "https://v/ep3")
	require.NoError(t, err)

	require.NoError(t, m.JoinRoom(ctx, roomID, "u2", "Bob"))
	assert.ErrorIs(t, m.JoinRoom(ctx, roomID, "u3", "Carol"), ErrRoomFull)

	// A present participant re-joining a full room still succeeds.
	assert.NoError(t, m.JoinRoom(ctx, roomID, "u2", "Bob"))
}

func TestManager_LeaveRoom_DeletesWhenEmpty(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	roomID, err := m.CreateRoom(ctx, "u1", "Alice", "my-drama", "3", "My Drama", "https://v/ep3")
	require.NoError(t, err)
	require.NoError(t, m.JoinRoom(ctx, roomID, "u2", "Bob"))

	var snapshots []*domain.Room
	unsubscribe, err := m.SubscribeToRoom(roomID, func(r *domain.Room) {
		snapshots = append(snapshots, r)
	})
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, m.LeaveRoom(ctx, roomID, "u1"))

	rooms, err := m.GetActiveRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 1, rooms[0].ParticipantCount)

	require.NoError(t, m.LeaveRoom(ctx, roomID, "u2"))

	rooms, err = m.GetActiveRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	// The subscriber observed the room die.
	require.NotEmpty(t, snapshots)
	assert.Nil(t, snapshots[len(snapshots)-1])
}

func TestManager_UpdateVideoState_LastWriterWins(t *testing.T) {
	ctx := context.Background()
	m, s := newTestManager(t)

	roomID, err := m.CreateRoom(ctx, "u1", "Alice", "my-drama", "3", "My Drama", "https://v/ep3")
	require.NoError(t, err)

	require.NoError(t, m.UpdateVideoState(ctx, roomID, true, 120.5))
	require.NoError(t, m.UpdateVideoState(ctx, roomID, false, 98.25))

	data, err := s.Get(ctx, "rooms/"+roomID)
	require.NoError(t, err)
	var r domain.Room
	require.NoError(t, json.Unmarshal(data, &r))
	assert.False(t, r.IsPlaying)
	assert.Equal(t, 98.25, r.CurrentTime)
	assert.NotZero(t, r.LastUpdated)
}

func TestManager_UpdateLastSeen(t *testing.T) {
	ctx := context.Background()

	nowMs := int64(1000)
	m, s := newTestManager(t, WithClock(func() time.Time {
		return time.UnixMilli(nowMs)
	}))

	roomID, err := m.CreateRoom(ctx, "u1", "Alice", "my-drama", "3", "My Drama", "https://v/ep3")
	require.NoError(t, err)

	nowMs = 5000
	require.NoError(t, m.UpdateLastSeen(ctx, roomID, "u1"))

	data, err := s.Get(ctx, "rooms/"+roomID)
	require.NoError(t, err)
	var r domain.Room
	require.NoError(t, json.Unmarshal(data, &r))

	// Only the heartbeat moved; joinedAt stays at the original time.
	assert.EqualValues(t, 5000, r.Participants["u1"].LastSeen)
	assert.EqualValues(t, 1000, r.Participants["u1"].JoinedAt)
}

func TestManager_Chat_AppendOnlyOrdering(t *testing.T) {
	ctx := context.Background()
	m, s := newTestManager(t)

	roomID, err := m.CreateRoom(ctx, "u1", "Alice", "my-drama", "3", "My Drama", "https://v/ep3")
	require.NoError(t, err)
	require.NoError(t, m.JoinRoom(ctx, roomID, "u2", "Bob"))

	k1, err := m.SendChatMessage(ctx, roomID, "u1", "Alice", "first")
	require.NoError(t, err)
	k2, err := m.SendChatMessage(ctx, roomID, "u2", "Bob", "second")
	require.NoError(t, err)

	assert.Less(t, k1, k2, "later messages must sort after earlier ones")

	data, err := s.Get(ctx, "rooms/"+roomID+"/chat")
	require.NoError(t, err)
	var chat map[string]domain.ChatMessage
	require.NoError(t, json.Unmarshal(data, &chat))
	require.Len(t, chat, 2)

	keys := make([]string, 0, len(chat))
	for k := range chat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, "first", chat[keys[0]].Message)
	assert.Equal(t, "second", chat[keys[1]].Message)
}

func TestManager_SendChatMessage_Empty(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	_, err := m.SendChatMessage(ctx, "r1", "u1", "Alice", "   ")
	assert.Error(t, err)
}

func TestManager_GetActiveRooms_PermissionDegrades(t *testing.T) {
	ctx := context.Background()
	st := &storemocks.Store{}
	st.On("Get", ctx, "rooms").Return(nil, store.ErrPermissionDenied)

	m := NewManager(st)
	rooms, err := m.GetActiveRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)
	st.AssertExpectations(t)
}

func TestManager_GetActiveRooms_SortedNewestFirst(t *testing.T) {
	ctx := context.Background()

	nowMs := int64(1000)
	m, _ := newTestManager(t, WithClock(func() time.Time {
		nowMs += 1000
		return time.UnixMilli(nowMs)
	}))

	_, err := m.CreateRoom(ctx, "u1", "Alice", "drama-a", "1", "Drama A", "https://v/a1")
	require.NoError(t, err)
	second, err := m.CreateRoom(ctx, "u2", "Bob", "drama-b", "1", "Drama B", "https://v/b1")
	require.NoError(t, err)

	rooms, err := m.GetActiveRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, second, rooms[0].RoomID)
}

func TestManager_SubscribeToRoom_InitialSnapshot(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	roomID, err := m.CreateRoom(ctx, "u1", "Alice", "my-drama", "3", "My Drama", "https://v/ep3")
	require.NoError(t, err)

	var snapshots []*domain.Room
	unsubscribe, err := m.SubscribeToRoom(roomID, func(r *domain.Room) {
		snapshots = append(snapshots, r)
	})
	require.NoError(t, err)
	defer unsubscribe()

	require.Len(t, snapshots, 1)
	require.NotNil(t, snapshots[0])
	assert.Equal(t, roomID, snapshots[0].ID)
	assert.Equal(t, "Alice", snapshots[0].HostName)

	require.NoError(t, m.UpdateVideoState(ctx, roomID, true, 10))
	require.Len(t, snapshots, 2)
	assert.True(t, snapshots[1].IsPlaying)
}

func TestManager_SubscribeToRoom_MissingRoomYieldsNil(t *testing.T) {
	m, _ := newTestManager(t)

	var got []*domain.Room
	unsubscribe, err := m.SubscribeToRoom("missing", func(r *domain.Room) {
		got = append(got, r)
	})
	require.NoError(t, err)
	defer unsubscribe()

	require.Len(t, got, 1)
	assert.Nil(t, got[0])
}
