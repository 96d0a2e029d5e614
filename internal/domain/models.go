package domain

import (
	"time"
)

// DefaultMaxParticipants bounds how many viewers a watch-together room
// admits. Join performs a soft check against it; concurrent joins near the
// boundary may transiently overshoot.
const DefaultMaxParticipants = 50

// Room is the shared document representing one synchronized-viewing
// session. Field names are part of the store contract and must not change.
type Room struct {
	ID              string                 `json:"id,omitempty"`
	HostID          string                 `json:"hostId"`
	HostName        string                 `json:"hostName"`
	Slug            string                 `json:"slug"`
	Episode         string                 `json:"episode"`
	DramaTitle      string                 `json:"dramaTitle"`
	VideoURL        string                 `json:"videoUrl"`
	IsPlaying       bool                   `json:"isPlaying"`
	CurrentTime     float64                `json:"currentTime"`
	CreatedAt       int64                  `json:"createdAt"`
	LastUpdated     int64                  `json:"lastUpdated,omitempty"`
	MaxParticipants int                    `json:"maxParticipants"`
	Participants    map[string]Participant `json:"participants,omitempty"`
	Chat            map[string]ChatMessage `json:"chat,omitempty"`
}

// ParticipantCount returns the number of present participants.
func (r *Room) ParticipantCount() int {
	return len(r.Participants)
}

// Participant is one viewer's presence entry inside a room.
type Participant struct {
	DisplayName string `json:"displayName"`
	JoinedAt    int64  `json:"joinedAt"`
	LastSeen    int64  `json:"lastSeen"`
}

// ChatMessage is one entry in a room's append-only chat transcript. The
// map key (a store push id) orders the transcript, not Timestamp.
type ChatMessage struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Message     string `json:"message"`
	Timestamp   int64  `json:"timestamp"`
}

// Drama is the upstream catalog's detail record for one series.
type Drama struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Poster      string   `json:"poster,omitempty"`
	Year        int      `json:"year,omitempty"`
	Status      string   `json:"status,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	Episodes    []string `json:"episodes,omitempty"`
}

// Episode is the playback metadata for one episode of a drama.
type Episode struct {
	Slug     string        `json:"slug"`
	Number   string        `json:"number"`
	Title    string        `json:"title,omitempty"`
	VideoURL string        `json:"videoUrl,omitempty"`
	Sources  []VideoSource `json:"sources,omitempty"`
}

// VideoSource is one playable stream variant for an episode.
type VideoSource struct {
	URL     string `json:"url"`
	Quality string `json:"quality,omitempty"`
	Server  string `json:"server,omitempty"`
}

// SearchResult is one page of search hits from the upstream catalog.
type SearchResult struct {
	Query      string  `json:"query"`
	Page       int     `json:"page"`
	TotalPages int     `json:"totalPages,omitempty"`
	Results    []Drama `json:"results"`
}

// ScheduleEntry is one airing slot in the weekly broadcast schedule.
type ScheduleEntry struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Day     string `json:"day"`
	Time    string `json:"time,omitempty"`
	Episode string `json:"episode,omitempty"`
}

// Ranking is one entry of the "hot series" top list.
type Ranking struct {
	Rank  int    `json:"rank"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Views int64  `json:"views,omitempty"`
}

// Profile is a user's editable identity record.
type Profile struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WatchlistItem marks one drama a user saved for later.
type WatchlistItem struct {
	UserID  string    `json:"user_id"`
	Slug    string    `json:"slug"`
	Title   string    `json:"title"`
	Poster  string    `json:"poster,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// Progress is a continue-watching bookmark for one episode.
type Progress struct {
	UserID    string    `json:"user_id"`
	Slug      string    `json:"slug"`
	Episode   string    `json:"episode"`
	Position  float64   `json:"position"`
	Duration  float64   `json:"duration,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRoomRequest is the payload for POST /api/rooms.
type CreateRoomRequest struct {
	Slug       string `json:"slug"`
	Episode    string `json:"episode"`
	DramaTitle string `json:"dramaTitle"`
	VideoURL   string `json:"videoUrl"`
}

// CreateRoomResponse is the response for a successful room creation.
type CreateRoomResponse struct {
	RoomID string `json:"roomId"`
}

// UpdateVideoStateRequest is the payload for playback-intent updates.
type UpdateVideoStateRequest struct {
	IsPlaying   bool    `json:"isPlaying"`
	CurrentTime float64 `json:"currentTime"`
}

// SendChatRequest is the payload for posting one chat message.
type SendChatRequest struct {
	Message string `json:"message"`
}

// RoomSummary is the lobby view of one active room.
type RoomSummary struct {
	RoomID           string `json:"roomId"`
	DramaTitle       string `json:"dramaTitle"`
	Slug             string `json:"slug"`
	Episode          string `json:"episode"`
	HostName         string `json:"hostName"`
	ParticipantCount int    `json:"participantCount"`
	MaxParticipants  int    `json:"maxParticipants"`
	CreatedAt        int64  `json:"createdAt"`
}
