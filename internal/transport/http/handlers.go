package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/kdramahub/kdramahub/internal/auth"
	"github.com/kdramahub/kdramahub/internal/catalog"
	"github.com/kdramahub/kdramahub/internal/content"
	"github.com/kdramahub/kdramahub/internal/domain"
	"github.com/kdramahub/kdramahub/internal/metrics"
	"github.com/kdramahub/kdramahub/internal/profile"
	"github.com/kdramahub/kdramahub/internal/repository"
	"github.com/kdramahub/kdramahub/internal/room"
	"github.com/kdramahub/kdramahub/internal/store"
)

// Handler holds the HTTP handlers for the catalog and room API
type Handler struct {
	catalog  catalog.Catalog
	rooms    room.Manager
	profiles profile.Service
	verifier *auth.Verifier
}

// NewHandler creates a new HTTP handler
func NewHandler(cat catalog.Catalog, rooms room.Manager, profiles profile.Service, verifier *auth.Verifier) *Handler {
	return &Handler{
		catalog:  cat,
		rooms:    rooms,
		profiles: profiles,
		verifier: verifier,
	}
}

// authenticate extracts and verifies the bearer token. On failure it
// writes a 401 and returns false.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		token = ""
	}

	identity, err := h.verifier.Verify(token)
	if err != nil {
		log.Printf("[ERROR] Token verification failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return identity, true
}

// writeJSON encodes v as the JSON response body
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeDomainError maps service errors onto HTTP status codes
func writeDomainError(w http.ResponseWriter, err error) {
	var fetchErr *content.FetchError
	switch {
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, repository.ErrProfileNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, room.ErrRoomFull):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrPermissionDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, store.ErrUnavailable):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.As(err, &fetchErr):
		if fetchErr.StatusCode == http.StatusNotFound {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusBadGateway)
		}
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// pageParam parses a ?page= query value, defaulting to 1
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// RecentlyAdded handles GET /api/catalog/recent
func (h *Handler) RecentlyAdded(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dramas, err := h.catalog.RecentlyAdded(r.Context(), pageParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, dramas)
}

// Popular handles GET /api/catalog/popular
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dramas, err := h.catalog.Popular(r.Context(), pageParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, dramas)
}

// Search handles GET /api/catalog/search?q={query}
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "Query is required", http.StatusBadRequest)
		return
	}

	result, err := h.catalog.Search(r.Context(), query, pageParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, result)
}

// Schedule handles GET /api/catalog/schedule
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries, err := h.catalog.Schedule(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, entries)
}

// Rankings handles GET /api/catalog/rankings
func (h *Handler) Rankings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rankings, err := h.catalog.TopRankings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, rankings)
}

// DramaDetailHandler handles GET /api/catalog/dramas/{slug} and
// GET /api/catalog/dramas/{slug}/episodes/{episode}
func (h *Handler) DramaDetailHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/catalog/dramas/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		drama, err := h.catalog.DramaDetail(r.Context(), parts[0])
		if err != nil {
			log.Printf("[ERROR] Failed to get drama '%s': %v", parts[0], err)
			writeDomainError(w, err)
			return
		}
		writeJSON(w, drama)
	case len(parts) == 3 && parts[1] == "episodes" && parts[2] != "":
		episode, err := h.catalog.EpisodeDetail(r.Context(), parts[0], parts[2])
		if err != nil {
			log.Printf("[ERROR] Failed to get episode '%s/%s': %v", parts[0], parts[2], err)
			writeDomainError(w, err)
			return
		}
		writeJSON(w, episode)
	default:
		http.NotFound(w, r)
	}
}

// RoomsHandler handles GET /api/rooms and POST /api/rooms
func (h *Handler) RoomsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.ListRooms(w, r)
	case http.MethodPost:
		h.CreateRoom(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ListRooms handles GET /api/rooms
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.GetActiveRooms(r.Context())
	if err != nil {
		log.Printf("[ERROR] Failed to list rooms: %v", err)
		writeDomainError(w, err)
		return
	}
	if rooms == nil {
		rooms = []domain.RoomSummary{}
	}
	writeJSON(w, rooms)
}

// CreateRoom handles POST /api/rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req domain.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Invalid JSON in create room request: %v", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Slug == "" || req.Episode == "" || req.DramaTitle == "" {
		http.Error(w, "slug, episode and dramaTitle are required", http.StatusBadRequest)
		return
	}

	roomID, err := h.rooms.CreateRoom(r.Context(), identity.UserID, identity.DisplayName, req.Slug, req.Episode, req.DramaTitle, req.VideoURL)
	if err != nil {
		log.Printf("[ERROR] Failed to create room for user '%s': %v", identity.UserID, err)
		writeDomainError(w, err)
		return
	}

	metrics.RoomsCreatedTotal.Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(domain.CreateRoomResponse{RoomID: roomID}); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// RoomsDetailHandler dispatches /api/rooms/{roomID}/{action}
func (h *Handler) RoomsDetailHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/rooms/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	roomID, action := parts[0], parts[1]

	switch {
	case action == "join" && r.Method == http.MethodPost:
		h.JoinRoom(w, r, roomID)
	case action == "leave" && r.Method == http.MethodPost:
		h.LeaveRoom(w, r, roomID)
	case action == "heartbeat" && r.Method == http.MethodPost:
		h.Heartbeat(w, r, roomID)
	case action == "video-state" && r.Method == http.MethodPut:
		h.UpdateVideoState(w, r, roomID)
	case action == "chat" && r.Method == http.MethodPost:
		h.SendChat(w, r, roomID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// JoinRoom handles POST /api/rooms/{roomID}/join
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	identity, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	if err := h.rooms.JoinRoom(r.Context(), roomID, identity.UserID, identity.DisplayName); err != nil {
		log.Printf("[ERROR] Failed to join room '%s' for user '%s': %v", roomID, identity.UserID, err)
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LeaveRoom handles POST /api/rooms/{roomID}/leave
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	identity, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	if err := h.rooms.LeaveRoom(r.Context(), roomID, identity.UserID); err != nil {
		log.Printf("[ERROR] Failed to leave room '%s' for user '%s': %v", roomID, identity.UserID, err)
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Heartbeat handles POST /api/rooms/{roomID}/heartbeat
func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request, roomID string) {
	identity, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	if err := h.rooms.UpdateLastSeen(r.Context(), roomID, identity.UserID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateVideoState handles PUT /api/rooms/{roomID}/video-state
func (h *Handler) UpdateVideoState(w http.ResponseWriter, r *http.Request, roomID string) {
	if _, ok := h.authenticate(w, r); !ok {
		return
	}

	var req domain.UpdateVideoStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.rooms.UpdateVideoState(r.Context(), roomID, req.IsPlaying, req.CurrentTime); err != nil {
		log.Printf("[ERROR] Failed to update video state for room '%s': %v", roomID, err)
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendChat handles POST /api/rooms/{roomID}/chat
func (h *Handler) SendChat(w http.ResponseWriter, r *http.Request, roomID string) {
	identity, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req domain.SendChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	key, err := h.rooms.SendChatMessage(r.Context(), roomID, identity.UserID, identity.DisplayName, req.Message)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	metrics.ChatMessagesTotal.Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]string{"messageId": key}); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// ProfileHandler handles GET /api/profile and PUT /api/profile
func (h *Handler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := h.profiles.GetProfile(r.Context(), identity.UserID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, p)
	case http.MethodPut:
		var req domain.Profile
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		p, err := h.profiles.SaveProfile(r.Context(), identity.UserID, req.DisplayName, req.AvatarURL)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, p)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// WatchlistHandler handles GET /api/watchlist and POST /api/watchlist
func (h *Handler) WatchlistHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		items, err := h.profiles.GetWatchlist(r.Context(), identity.UserID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if items == nil {
			items = []*domain.WatchlistItem{}
		}
		writeJSON(w, items)
	case http.MethodPost:
		var req domain.WatchlistItem
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := h.profiles.AddToWatchlist(r.Context(), identity.UserID, req.Slug, req.Title, req.Poster); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// WatchlistDetailHandler handles DELETE /api/watchlist/{slug}
func (h *Handler) WatchlistDetailHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	identity, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	slug := strings.TrimPrefix(r.URL.Path, "/api/watchlist/")
	if slug == "" {
		http.Error(w, "Slug is required", http.StatusBadRequest)
		return
	}

	if err := h.profiles.RemoveFromWatchlist(r.Context(), identity.UserID, slug); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ContinueWatching handles GET /api/continue-watching
func (h *Handler) ContinueWatching(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	identity, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	entries, err := h.profiles.GetContinueWatching(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []*domain.Progress{}
	}
	writeJSON(w, entries)
}

// SaveProgress handles PUT /api/progress
func (h *Handler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	identity, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req domain.Progress
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.profiles.SaveProgress(r.Context(), identity.UserID, req.Slug, req.Episode, req.Position, req.Duration); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearProgress handles DELETE /api/progress/{slug}
func (h *Handler) ClearProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	identity, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	slug := strings.TrimPrefix(r.URL.Path, "/api/progress/")
	if slug == "" {
		http.Error(w, "Slug is required", http.StatusBadRequest)
		return
	}

	if err := h.profiles.ClearProgress(r.Context(), identity.UserID, slug); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
