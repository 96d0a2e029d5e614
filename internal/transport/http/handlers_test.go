package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdramahub/kdramahub/internal/auth"
	catalogmocks "github.com/kdramahub/kdramahub/internal/catalog/mocks"
	"github.com/kdramahub/kdramahub/internal/content"
	"github.com/kdramahub/kdramahub/internal/domain"
	profilemocks "github.com/kdramahub/kdramahub/internal/profile/mocks"
	"github.com/kdramahub/kdramahub/internal/room"
	roommocks "github.com/kdramahub/kdramahub/internal/room/mocks"
	"github.com/kdramahub/kdramahub/internal/store"
)

const testSecret = "test-secret"

type testMocks struct {
	catalog  *catalogmocks.Catalog
	rooms    *roommocks.Manager
	profiles *profilemocks.Service
}

func newTestHandler() (*Handler, *testMocks) {
	m := &testMocks{
		catalog:  &catalogmocks.Catalog{},
		rooms:    &roommocks.Manager{},
		profiles: &profilemocks.Service{},
	}
	h := NewHandler(m.catalog, m.rooms, m.profiles, auth.NewVerifier(testSecret))
	return h, m
}

func signTestToken(t *testing.T, userID, name string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"name": name,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func authedRequest(t *testing.T, method, target string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-1", "Min-ji"))
	return req
}

func TestHandler_Search(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		setupMocks     func(*testMocks)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "successful search",
			target: "/api/catalog/search?q=goblin&page=2",
			setupMocks: func(m *testMocks) {
				m.catalog.On("Search", context.Background(), "goblin", 2).
					Return(&domain.SearchResult{
						Query:   "goblin",
						Page:    2,
						Results: []domain.Drama{{Slug: "goblin", Title: "Goblin"}},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"goblin"`,
		},
		{
			name:   "default page",
			target: "/api/catalog/search?q=goblin",
			setupMocks: func(m *testMocks) {
				m.catalog.On("Search", context.Background(), "goblin", 1).
					Return(&domain.SearchResult{Query: "goblin", Page: 1}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing query",
			target:         "/api/catalog/search",
			setupMocks:     func(m *testMocks) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Query is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newTestHandler()
			tt.setupMocks(m)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			w := httptest.NewRecorder()

			h.Search(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
			m.catalog.AssertExpectations(t)
		})
	}
}

func TestHandler_DramaDetailHandler(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		setupMocks     func(*testMocks)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "drama detail",
			target: "/api/catalog/dramas/goblin",
			setupMocks: func(m *testMocks) {
				m.catalog.On("DramaDetail", context.Background(), "goblin").
					Return(&domain.Drama{Slug: "goblin", Title: "Goblin"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"Goblin"`,
		},
		{
			name:   "episode detail",
			target: "/api/catalog/dramas/goblin/episodes/3",
			setupMocks: func(m *testMocks) {
				m.catalog.On("EpisodeDetail", context.Background(), "goblin", "3").
					Return(&domain.Episode{Slug: "goblin", Number: "3"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "upstream not found maps to 404",
			target: "/api/catalog/dramas/missing",
			setupMocks: func(m *testMocks) {
				m.catalog.On("DramaDetail", context.Background(), "missing").
					Return(nil, &content.FetchError{Path: "/drama/missing", StatusCode: http.StatusNotFound})
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "upstream failure maps to 502",
			target: "/api/catalog/dramas/goblin",
			setupMocks: func(m *testMocks) {
				m.catalog.On("DramaDetail", context.Background(), "goblin").
					Return(nil, &content.FetchError{Path: "/drama/goblin", StatusCode: http.StatusInternalServerError})
			},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "malformed path",
			target:         "/api/catalog/dramas/goblin/unknown/3",
			setupMocks:     func(m *testMocks) {},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newTestHandler()
			tt.setupMocks(m)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			w := httptest.NewRecorder()

			h.DramaDetailHandler(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
			m.catalog.AssertExpectations(t)
		})
	}
}

func TestHandler_CreateRoom(t *testing.T) {
	validBody, _ := json.Marshal(domain.CreateRoomRequest{
		Slug:       "goblin",
		Episode:    "3",
		DramaTitle: "Goblin",
		VideoURL:   "https://cdn.example.com/goblin/3.m3u8",
	})

	tests := []struct {
		name           string
		body           []byte
		authorized     bool
		setupMocks     func(*testMocks)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:       "successful creation",
			body:       validBody,
			authorized: true,
			setupMocks: func(m *testMocks) {
				m.rooms.On("CreateRoom", context.Background(), "user-1", "Min-ji", "goblin", "3", "Goblin", "https://cdn.example.com/goblin/3.m3u8").
					Return("room-abc", nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"room-abc"`,
		},
		{
			name:           "unauthorized",
			body:           validBody,
			authorized:     false,
			setupMocks:     func(m *testMocks) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid JSON",
			body:           []byte("not json"),
			authorized:     true,
			setupMocks:     func(m *testMocks) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid JSON",
		},
		{
			name:           "missing fields",
			body:           []byte(`{"slug":"goblin"}`),
			authorized:     true,
			setupMocks:     func(m *testMocks) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:       "store unavailable",
			body:       validBody,
			authorized: true,
			setupMocks: func(m *testMocks) {
				m.rooms.On("CreateRoom", context.Background(), "user-1", "Min-ji", "goblin", "3", "Goblin", "https://cdn.example.com/goblin/3.m3u8").
					Return("", store.ErrUnavailable)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newTestHandler()
			tt.setupMocks(m)

			var req *http.Request
			if tt.authorized {
				req = authedRequest(t, http.MethodPost, "/api/rooms", tt.body)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/api/rooms", bytes.NewReader(tt.body))
			}
			w := httptest.NewRecorder()

			h.CreateRoom(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
			m.rooms.AssertExpectations(t)
		})
	}
}

func TestHandler_RoomsDetailHandler(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		target         string
		body           []byte
		setupMocks     func(*testMocks)
		expectedStatus int
	}{
		{
			name:   "join",
			method: http.MethodPost,
			target: "/api/rooms/room-abc/join",
			setupMocks: func(m *testMocks) {
				m.rooms.On("JoinRoom", context.Background(), "room-abc", "user-1", "Min-ji").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "join full room",
			method: http.MethodPost,
			target: "/api/rooms/room-abc/join",
			setupMocks: func(m *testMocks) {
				m.rooms.On("JoinRoom", context.Background(), "room-abc", "user-1", "Min-ji").Return(room.ErrRoomFull)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:   "join missing room",
			method: http.MethodPost,
			target: "/api/rooms/room-gone/join",
			setupMocks: func(m *testMocks) {
				m.rooms.On("JoinRoom", context.Background(), "room-gone", "user-1", "Min-ji").Return(room.ErrRoomNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "leave",
			method: http.MethodPost,
			target: "/api/rooms/room-abc/leave",
			setupMocks: func(m *testMocks) {
				m.rooms.On("LeaveRoom", context.Background(), "room-abc", "user-1").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "heartbeat",
			method: http.MethodPost,
			target: "/api/rooms/room-abc/heartbeat",
			setupMocks: func(m *testMocks) {
				m.rooms.On("UpdateLastSeen", context.Background(), "room-abc", "user-1").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "video state",
			method: http.MethodPut,
			target: "/api/rooms/room-abc/video-state",
			body:   []byte(`{"isPlaying":true,"currentTime":42.5}`),
			setupMocks: func(m *testMocks) {
				m.rooms.On("UpdateVideoState", context.Background(), "room-abc", true, 42.5).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "chat",
			method: http.MethodPost,
			target: "/api/rooms/room-abc/chat",
			body:   []byte(`{"message":"hello"}`),
			setupMocks: func(m *testMocks) {
				m.rooms.On("SendChatMessage", context.Background(), "room-abc", "user-1", "Min-ji", "hello").
					Return("-Nabc123", nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unknown action",
			method:         http.MethodPost,
			target:         "/api/rooms/room-abc/unknown",
			setupMocks:     func(m *testMocks) {},
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newTestHandler()
			tt.setupMocks(m)

			req := authedRequest(t, tt.method, tt.target, tt.body)
			w := httptest.NewRecorder()

			h.RoomsDetailHandler(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			m.rooms.AssertExpectations(t)
		})
	}
}

func TestHandler_ListRooms(t *testing.T) {
	h, m := newTestHandler()
	m.rooms.On("GetActiveRooms", context.Background()).Return([]domain.RoomSummary{
		{RoomID: "room-b", DramaTitle: "Goblin", ParticipantCount: 2},
		{RoomID: "room-a", DramaTitle: "Signal", ParticipantCount: 1},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	w := httptest.NewRecorder()

	h.RoomsHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var summaries []domain.RoomSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "room-b", summaries[0].RoomID)
	m.rooms.AssertExpectations(t)
}

func TestHandler_ListRooms_EmptyIsArray(t *testing.T) {
	h, m := newTestHandler()
	m.rooms.On("GetActiveRooms", context.Background()).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	w := httptest.NewRecorder()

	h.RoomsHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestHandler_ProfileHandler(t *testing.T) {
	t.Run("get existing profile", func(t *testing.T) {
		h, m := newTestHandler()
		m.profiles.On("GetProfile", context.Background(), "user-1").
			Return(&domain.Profile{UserID: "user-1", DisplayName: "Min-ji"}, nil)

		req := authedRequest(t, http.MethodGet, "/api/profile", nil)
		w := httptest.NewRecorder()

		h.ProfileHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Min-ji")
		m.profiles.AssertExpectations(t)
	})

	t.Run("save profile", func(t *testing.T) {
		h, m := newTestHandler()
		m.profiles.On("SaveProfile", context.Background(), "user-1", "Min-ji", "https://img.example.com/a.png").
			Return(&domain.Profile{UserID: "user-1", DisplayName: "Min-ji", AvatarURL: "https://img.example.com/a.png"}, nil)

		body, _ := json.Marshal(domain.Profile{DisplayName: "Min-ji", AvatarURL: "https://img.example.com/a.png"})
		req := authedRequest(t, http.MethodPut, "/api/profile", body)
		w := httptest.NewRecorder()

		h.ProfileHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		m.profiles.AssertExpectations(t)
	})

	t.Run("unauthorized", func(t *testing.T) {
		h, _ := newTestHandler()

		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		w := httptest.NewRecorder()

		h.ProfileHandler(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_WatchlistHandlers(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		h, m := newTestHandler()
		m.profiles.On("AddToWatchlist", context.Background(), "user-1", "goblin", "Goblin", "poster.jpg").Return(nil)

		body, _ := json.Marshal(domain.WatchlistItem{Slug: "goblin", Title: "Goblin", Poster: "poster.jpg"})
		req := authedRequest(t, http.MethodPost, "/api/watchlist", body)
		w := httptest.NewRecorder()

		h.WatchlistHandler(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		m.profiles.AssertExpectations(t)
	})

	t.Run("list", func(t *testing.T) {
		h, m := newTestHandler()
		m.profiles.On("GetWatchlist", context.Background(), "user-1").
			Return([]*domain.WatchlistItem{{Slug: "goblin", Title: "Goblin"}}, nil)

		req := authedRequest(t, http.MethodGet, "/api/watchlist", nil)
		w := httptest.NewRecorder()

		h.WatchlistHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "goblin")
		m.profiles.AssertExpectations(t)
	})

	t.Run("remove", func(t *testing.T) {
		h, m := newTestHandler()
		m.profiles.On("RemoveFromWatchlist", context.Background(), "user-1", "goblin").Return(nil)

		req := authedRequest(t, http.MethodDelete, "/api/watchlist/goblin", nil)
		w := httptest.NewRecorder()

		h.WatchlistDetailHandler(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		m.profiles.AssertExpectations(t)
	})
}

func TestHandler_ProgressHandlers(t *testing.T) {
	t.Run("save", func(t *testing.T) {
		h, m := newTestHandler()
		m.profiles.On("SaveProgress", context.Background(), "user-1", "goblin", "3", 421.0, 3600.0).Return(nil)

		body, _ := json.Marshal(domain.Progress{Slug: "goblin", Episode: "3", Position: 421, Duration: 3600})
		req := authedRequest(t, http.MethodPut, "/api/progress", body)
		w := httptest.NewRecorder()

		h.SaveProgress(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		m.profiles.AssertExpectations(t)
	})

	t.Run("continue watching", func(t *testing.T) {
		h, m := newTestHandler()
		m.profiles.On("GetContinueWatching", context.Background(), "user-1").
			Return([]*domain.Progress{{Slug: "goblin", Episode: "3", Position: 421}}, nil)

		req := authedRequest(t, http.MethodGet, "/api/continue-watching", nil)
		w := httptest.NewRecorder()

		h.ContinueWatching(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "goblin")
		m.profiles.AssertExpectations(t)
	})

	t.Run("clear", func(t *testing.T) {
		h, m := newTestHandler()
		m.profiles.On("ClearProgress", context.Background(), "user-1", "goblin").Return(nil)

		req := authedRequest(t, http.MethodDelete, "/api/progress/goblin", nil)
		w := httptest.NewRecorder()

		h.ClearProgress(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		m.profiles.AssertExpectations(t)
	})
}
