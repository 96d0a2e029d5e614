package client

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Commands provides command-line operations for the client
type Commands struct {
	client *Client
}

// NewCommands creates a new Commands instance
func NewCommands(client *Client) *Commands {
	return &Commands{
		client: client,
	}
}

// Search queries the catalog and displays matching dramas
func (c *Commands) Search(ctx context.Context, query string, page int) error {
	result, err := c.client.Search(ctx, query, page)
	if err != nil {
		return err
	}

	if len(result.Results) == 0 {
		fmt.Printf("No dramas found for '%s'\n", query)
		return nil
	}

	fmt.Printf("%-30s %-40s %-6s %s\n", "Slug", "Title", "Year", "Status")
	fmt.Println(strings.Repeat("-", 90))
	for _, drama := range result.Results {
		title := drama.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Printf("%-30s %-40s %-6d %s\n", drama.Slug, title, drama.Year, drama.Status)
	}
	if result.TotalPages > 1 {
		fmt.Printf("\nPage %d of %d\n", result.Page, result.TotalPages)
	}

	return nil
}

// Show retrieves and displays one drama's details
func (c *Commands) Show(ctx context.Context, slug string) error {
	drama, err := c.client.GetDrama(ctx, slug)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			fmt.Printf("Drama '%s' not found\n", slug)
			return nil
		}
		return err
	}

	fmt.Printf("Title: %s\n", drama.Title)
	fmt.Printf("Slug: %s\n", drama.Slug)
	if drama.Year > 0 {
		fmt.Printf("Year: %d\n", drama.Year)
	}
	if drama.Status != "" {
		fmt.Printf("Status: %s\n", drama.Status)
	}
	if len(drama.Genres) > 0 {
		fmt.Printf("Genres: %s\n", strings.Join(drama.Genres, ", "))
	}
	if drama.Description != "" {
		fmt.Printf("Description: %s\n", drama.Description)
	}
	fmt.Printf("Episodes: %d\n", len(drama.Episodes))

	return nil
}

// Rooms displays all active watch-together rooms in a table format
func (c *Commands) Rooms(ctx context.Context) error {
	rooms, err := c.client.ListRooms(ctx)
	if err != nil {
		return err
	}

	if len(rooms) == 0 {
		fmt.Println("No active rooms")
		return nil
	}

	fmt.Printf("%-22s %-30s %-8s %-15s %-12s %s\n", "Room ID", "Drama", "Episode", "Host", "Viewers", "Created")
	fmt.Println(strings.Repeat("-", 105))
	for _, room := range rooms {
		title := room.DramaTitle
		if len(title) > 30 {
			title = title[:27] + "..."
		}
		fmt.Printf("%-22s %-30s %-8s %-15s %d/%-10d %s\n",
			room.RoomID,
			title,
			room.Episode,
			room.HostName,
			room.ParticipantCount,
			room.MaxParticipants,
			time.UnixMilli(room.CreatedAt).Format("2006-01-02 15:04:05"),
		)
	}

	return nil
}

// CreateRoom creates a watch-together room and displays its id
func (c *Commands) CreateRoom(ctx context.Context, slug, episode, dramaTitle, videoURL string) error {
	result, err := c.client.CreateRoom(ctx, slug, episode, dramaTitle, videoURL)
	if err != nil {
		return err
	}

	fmt.Printf("Room created:\n")
	fmt.Printf("Room ID: %s\n", result.RoomID)
	return nil
}

// JoinRoom joins an existing watch-together room
func (c *Commands) JoinRoom(ctx context.Context, roomID string) error {
	err := c.client.JoinRoom(ctx, roomID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			fmt.Printf("Room '%s' not found\n", roomID)
			return nil
		}
		return err
	}

	fmt.Printf("Joined room '%s'\n", roomID)
	return nil
}
