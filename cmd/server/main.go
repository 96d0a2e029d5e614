package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kdramahub/kdramahub/internal/auth"
	cachememory "github.com/kdramahub/kdramahub/internal/cache/memory"
	"github.com/kdramahub/kdramahub/internal/catalog"
	"github.com/kdramahub/kdramahub/internal/config"
	"github.com/kdramahub/kdramahub/internal/content"
	"github.com/kdramahub/kdramahub/internal/metrics"
	"github.com/kdramahub/kdramahub/internal/profile"
	"github.com/kdramahub/kdramahub/internal/repository/sqlite"
	"github.com/kdramahub/kdramahub/internal/room"
	storememory "github.com/kdramahub/kdramahub/internal/store/memory"
	"github.com/kdramahub/kdramahub/internal/transport/client"
	httpTransport "github.com/kdramahub/kdramahub/internal/transport/http"
)

var rootCmd = &cobra.Command{
	Use:   "kdramahub",
	Short: "A drama streaming catalog with watch-together rooms",
	Long:  "A drama streaming catalog server with a cached upstream content API and synchronized watch-together rooms",
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the catalog and room server",
	RunE:  runServer,
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Client commands for interacting with the server",
}

var searchCmd = &cobra.Command{
	Use:   "search [QUERY]",
	Short: "Search the drama catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var showCmd = &cobra.Command{
	Use:   "show [SLUG]",
	Short: "Show details for one drama",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List active watch-together rooms",
	RunE:  runRooms,
}

var createRoomCmd = &cobra.Command{
	Use:   "create-room [SLUG] [EPISODE] [TITLE]",
	Short: "Create a watch-together room",
	Args:  cobra.ExactArgs(3),
	RunE:  runCreateRoom,
}

var joinRoomCmd = &cobra.Command{
	Use:   "join-room [ROOM_ID]",
	Short: "Join a watch-together room",
	Args:  cobra.ExactArgs(1),
	RunE:  runJoinRoom,
}

func init() {
	// Server command flags
	serverCmd.Flags().StringP("port", "p", "8080", "Server port")
	serverCmd.Flags().String("server-url", "http://localhost:8080", "Server URL (for client communication)")
	serverCmd.Flags().String("upstream-url", "https://api.dramacool.example.com", "Upstream content API base URL")
	serverCmd.Flags().Duration("upstream-timeout", 10*time.Second, "Upstream content API request timeout")
	serverCmd.Flags().String("db-path", "kdramahub.db", "Database file path")

	// Cache TTL flags
	serverCmd.Flags().Duration("ttl-recent", 5*time.Minute, "Cache TTL for recently-added listings")
	serverCmd.Flags().Duration("ttl-search", 10*time.Minute, "Cache TTL for search results")
	serverCmd.Flags().Duration("ttl-popular", 30*time.Minute, "Cache TTL for popular listings")
	serverCmd.Flags().Duration("ttl-drama", 2*time.Hour, "Cache TTL for drama details")
	serverCmd.Flags().Duration("ttl-episode", 6*time.Hour, "Cache TTL for episode details")
	serverCmd.Flags().Duration("ttl-schedule", 15*time.Minute, "Cache TTL for the broadcast schedule")
	serverCmd.Flags().Duration("ttl-rankings", 30*time.Minute, "Cache TTL for the top rankings")

	// Room configuration flags
	serverCmd.Flags().Int("max-participants", 50, "Maximum participants per watch-together room")

	// Logging configuration flags
	serverCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging (HTTP requests/responses and error details)")

	// Client command flags
	clientCmd.PersistentFlags().StringP("server-url", "u", "http://localhost:8080", "Server URL")
	clientCmd.PersistentFlags().StringP("token", "t", "", "Bearer token (defaults to KDRAMAHUB_TOKEN)")
	createRoomCmd.Flags().String("video-url", "", "Video stream URL for the room")

	// Add subcommands
	clientCmd.AddCommand(searchCmd, showCmd, roomsCmd, createRoomCmd, joinRoomCmd)
	rootCmd.AddCommand(serverCmd, clientCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	// Get configuration from CLI flags
	port, _ := cmd.Flags().GetString("port")
	serverURL, _ := cmd.Flags().GetString("server-url")
	upstreamURL, _ := cmd.Flags().GetString("upstream-url")
	upstreamTimeout, _ := cmd.Flags().GetDuration("upstream-timeout")
	dbPath, _ := cmd.Flags().GetString("db-path")
	maxParticipants, _ := cmd.Flags().GetInt("max-participants")
	verbose, _ := cmd.Flags().GetBool("verbose")

	ttl := catalog.TTLPolicy{}
	ttl.Recent, _ = cmd.Flags().GetDuration("ttl-recent")
	ttl.Search, _ = cmd.Flags().GetDuration("ttl-search")
	ttl.Popular, _ = cmd.Flags().GetDuration("ttl-popular")
	ttl.Drama, _ = cmd.Flags().GetDuration("ttl-drama")
	ttl.Episode, _ = cmd.Flags().GetDuration("ttl-episode")
	ttl.Schedule, _ = cmd.Flags().GetDuration("ttl-schedule")
	ttl.Rankings, _ = cmd.Flags().GetDuration("ttl-rankings")

	// The token signing secret never travels through flags
	jwtSecret := os.Getenv("KDRAMAHUB_JWT_SECRET")

	// Create configuration
	cfg, err := config.New(port, serverURL, upstreamURL, upstreamTimeout, dbPath, ttl, maxParticipants, jwtSecret, verbose)
	if err != nil {
		return fmt.Errorf("failed to create configuration: %w", err)
	}

	log.Printf("Starting kdramahub server with config: port=%s upstream=%s", cfg.Server.Port, cfg.Upstream.BaseURL)

	// Initialize database
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("Error closing repository: %v", err)
		}
	}()

	// Initialize the cached catalog over the upstream content API
	contentClient := content.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	responseCache := cachememory.New(contentClient, cachememory.WithMetrics(metrics.CacheCollector{}))
	cat := catalog.New(responseCache, cfg.Cache)
	log.Printf("Using in-memory response cache")

	// Initialize the room manager over the in-memory document store
	roomStore := storememory.New()
	rooms := room.NewManager(roomStore, room.WithMaxParticipants(cfg.Rooms.MaxParticipants))

	// Initialize profile service and token verifier
	profiles := profile.New(repo)
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)

	// Create and start HTTP server
	server := httpTransport.NewServer(cat, rooms, profiles, verifier, cfg.Server.Port, cfg.Logging.Verbose)

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down gracefully...", sig)

		// Create shutdown context with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Shutdown server
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error during server shutdown: %v", err)
		}
	}

	log.Println("Server stopped")
	return nil
}

func newClientCommands(cmd *cobra.Command) *client.Commands {
	serverURL, _ := cmd.Flags().GetString("server-url")
	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token = os.Getenv("KDRAMAHUB_TOKEN")
	}
	return client.NewCommands(client.NewClient(serverURL, token))
}

func runSearch(cmd *cobra.Command, args []string) error {
	commands := newClientCommands(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return commands.Search(ctx, args[0], 1)
}

func runShow(cmd *cobra.Command, args []string) error {
	commands := newClientCommands(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return commands.Show(ctx, args[0])
}

func runRooms(cmd *cobra.Command, args []string) error {
	commands := newClientCommands(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return commands.Rooms(ctx)
}

func runCreateRoom(cmd *cobra.Command, args []string) error {
	commands := newClientCommands(cmd)
	videoURL, _ := cmd.Flags().GetString("video-url")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return commands.CreateRoom(ctx, args[0], args[1], args[2], videoURL)
}

func runJoinRoom(cmd *cobra.Command, args []string) error {
	commands := newClientCommands(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return commands.JoinRoom(ctx, args[0])
}

func main() {
	// A .env file is optional; real environments set variables directly
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
