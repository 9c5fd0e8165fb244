// Command maze-runner starts the maze server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Every flag can also be set through the environment (PORT, HOST, MAPS_DIR,
// SESSIONS_DIR, SESSION_STORE, REDIS_ADDR, ...), and a .env file in the
// working directory is loaded first.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/maze-runner/api"
	"github.com/wricardo/maze-runner/game/library"
	"github.com/wricardo/maze-runner/game/service"
	"github.com/wricardo/maze-runner/game/session"
	"github.com/wricardo/maze-runner/transport/mcp"
	"github.com/wricardo/maze-runner/transport/websocket"
)

// Version information
const (
	Version = mcp.Version
	AppName = "Maze Runner Server"
)

// dotenvLoaded is declared before the flags so a .env file is read before
// their environment defaults are evaluated.
var dotenvLoaded = godotenv.Load() == nil

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	host         = flag.String("host", envString("HOST", "localhost"), "HTTP server host")
	mapsDir      = flag.String("maps-dir", envString("MAPS_DIR", "maps"), "Directory holding saved mazes")
	sessionsDir  = flag.String("sessions-dir", envString("SESSIONS_DIR", "sessions"), "Directory for file session storage")
	sessionStore = flag.String("session-store", envString("SESSION_STORE", "file"), "Session storage backend: file, redis or memory")
	redisAddr    = flag.String("redis-addr", envString("REDIS_ADDR", "localhost:6379"), "Redis address for the redis session store")
	redisPrefix  = flag.String("redis-prefix", envString("REDIS_PREFIX", "maze"), "Key prefix for the redis session store")
	sessionTTL   = flag.Duration("session-ttl", envDuration("SESSION_TTL", 24*time.Hour), "Evict sessions idle for longer than this")
	debug        = flag.Bool("debug", envBool("DEBUG", false), "Enable debug logging")
	logFormat    = flag.String("log-format", envString("LOG_FORMAT", "text"), "Log format: text or json")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", envBool("NGROK_ENABLED", false), "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", envString("NGROK_DOMAIN", ""), "Custom ngrok domain (optional)")
)

var log = logrus.WithField("component", "main")

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio, mcp   Aliases for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                   # HTTP server on port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -session-store redis -port 9090   # share sessions through Redis\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp                         # MCP stdio server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nUse mazectl for offline generate/solve/validate.\n")
	}
}

// configureLogging applies -debug and -log-format to the standard logger.
func configureLogging(out io.Writer) {
	logrus.SetOutput(out)
	if *logFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	args := flag.Args()
	mode := "server"
	if len(args) > 0 {
		mode = args[0]
	}

	// stdout carries the MCP protocol in stdio mode
	if mode == "stdio-mcp" || mode == "mcp-stdio" || mode == "mcp" {
		configureLogging(os.Stderr)
	} else {
		configureLogging(os.Stdout)
	}

	if dotenvLoaded {
		log.Debug("loaded environment variables from .env")
	}
	log.WithFields(logrus.Fields{"version": Version, "mode": mode}).Infof("starting %s", AppName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := initializeServices(ctx)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize services")
	}
	defer services.shutdown()

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(ctx, services.game)

	case "server", "http":
		runHTTPServer(ctx, services.game)

	default:
		log.Fatalf("unknown mode %q; use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// services bundles what initializeServices wires together.
type services struct {
	game     service.GameService
	sessions *session.Manager
	maps     *library.Library
	redis    *redis.Client
}

// shutdown flushes sessions and closes external connections.
func (s *services) shutdown() {
	if err := s.sessions.SaveAllSessions(); err != nil {
		log.WithError(err).Warn("failed to save sessions on shutdown")
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.WithError(err).Warn("failed to close redis client")
		}
	}
}

// newPersistence builds the session store selected by -session-store.
func newPersistence(ctx context.Context) (session.SessionPersistence, *redis.Client, error) {
	switch *sessionStore {
	case "memory":
		return nil, nil, nil

	case "file":
		persistence, err := session.NewFilePersistence(*sessionsDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		return persistence, nil, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     *redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		persistence := session.NewRedisPersistence(client, *redisPrefix, *sessionTTL)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := persistence.Ping(pingCtx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", *redisAddr, err)
		}
		return persistence, client, nil
	}
	return nil, nil, fmt.Errorf("unknown session store %q", *sessionStore)
}

// initializeServices wires the map library, session manager and game service.
// It also starts background routines that stop when ctx is cancelled.
func initializeServices(ctx context.Context) (*services, error) {
	maps, err := library.NewLibrary(*mapsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open map library: %w", err)
	}

	persistence, redisClient, err := newPersistence(ctx)
	if err != nil {
		return nil, err
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.WithError(err).Warn("failed to load persisted sessions")
	}

	log.WithFields(logrus.Fields{
		"maps":     maps.Dir(),
		"store":    *sessionStore,
		"sessions": sessionManager.Count(),
	}).Info("services ready")

	go sessionCleanupRoutine(ctx, sessionManager, *sessionTTL)
	if fp, ok := persistence.(*session.FilePersistence); ok {
		go filesystemSyncRoutine(ctx, sessionManager, fp)
	}

	return &services{
		game:     service.NewGameService(sessionManager, maps),
		sessions: sessionManager,
		maps:     maps,
		redis:    redisClient,
	}, nil
}

// sessionCleanupRoutine periodically evicts sessions that have not been
// accessed within maxAge.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, maxAge time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.WithField("removed", removed).Info("cleaned up expired sessions")
			}
		}
	}
}

// filesystemSyncRoutine drops sessions from memory whose files were deleted
// out from under the server.
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphanedSessions(manager, persistence); pruned > 0 {
				log.WithField("pruned", pruned).Info("filesystem sync pruned orphaned sessions")
			}
		}
	}
}

func pruneOrphanedSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			log.WithField("session", sess.ID).Debug("pruned session from memory (file deleted)")
		}
	}
	return pruned
}

// newRouter combines the REST API with a POST /mcp endpoint backed by mcpClient.
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})
	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, gameService service.GameService) {
	hub := websocket.NewHub()
	go hub.Run(ctx)

	addr := fmt.Sprintf("%s:%d", *host, *port)
	mainRouter := newRouter(api.NewServer(gameService, hub), mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.WithFields(logrus.Fields{
			"rest":      fmt.Sprintf("http://%s/api", addr),
			"websocket": fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp":       fmt.Sprintf("http://%s/mcp", addr),
		}).Infof("HTTP server listening on %s", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	if *ngrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, mainRouter)
		}()
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("server stopped")
}

// runNgrokTunnel serves handler through an ngrok HTTP endpoint until ctx ends.
func runNgrokTunnel(ctx context.Context, handler http.Handler) {
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = envString("NGROK_AUTHTOKEN", os.Getenv("NGROK_AUTH_TOKEN"))
	}
	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if *ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(*ngrokDomain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.WithError(err).Warn("failed to start ngrok tunnel")
		return
	}

	ngrokURL := tun.URL()
	log.WithFields(logrus.Fields{
		"rest": ngrokURL + "/api",
		"mcp":  ngrokURL + "/mcp",
	}).Infof("ngrok tunnel established: %s", ngrokURL)

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("failed to close ngrok tunnel")
		}
	}()

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.WithError(err).Warn("ngrok server error")
	}
	log.Info("ngrok tunnel closed")
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at the configured host and port; if
// unavailable, it starts an internal HTTP API on a random loopback port.
func runStdioMCPWithInternalServer(ctx context.Context, gameService service.GameService) {
	externalURL := fmt.Sprintf("http://%s:%d", *host, *port)
	baseURL := externalURL

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil && resp.StatusCode == http.StatusOK {
		resp.Body.Close()
		log.WithField("url", externalURL).Info("external API server found, using it for MCP")
	} else {
		if err == nil {
			resp.Body.Close()
		}
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.WithError(err).Fatal("failed to get available port")
		}

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Warn("internal HTTP server error")
			}
		}()
		go func() {
			<-ctx.Done()
			httpServer.Close()
		}()

		baseURL = "http://" + listener.Addr().String()
		log.WithField("url", baseURL).Info("started internal HTTP server for MCP stdio")
	}

	if err := mcp.NewClient(baseURL).ServeStdio(); err != nil {
		log.WithError(err).Fatal("MCP stdio server error")
	}
}
