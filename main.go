// Command juegoBE runs the maze chase game server.
//
// Commands:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket
//     updates and an /mcp HTTP endpoint, optionally behind an ngrok tunnel
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if
//     none is reachable
//  3. "validate" checks maze configuration files
//  4. "simulate" plays a scripted, seeded round headlessly
//
// Every flag can also be set through the environment, and a .env file in the
// working directory is loaded first.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/crneirav-code/juegoBE/api"
	"github.com/crneirav-code/juegoBE/game/config"
	"github.com/crneirav-code/juegoBE/game/engine"
	"github.com/crneirav-code/juegoBE/game/service"
	"github.com/crneirav-code/juegoBE/game/session"
	"github.com/crneirav-code/juegoBE/transport/mcp"
	"github.com/crneirav-code/juegoBE/transport/websocket"
	"github.com/crneirav-code/juegoBE/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Maze Chase Server"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("error loading .env file")
		}
	} else {
		log.Debug("loaded environment variables from .env file")
	}

	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		log.WithError(err).Fatal("command failed")
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:           "juegoBE",
		Usage:          AppName,
		Version:        Version,
		DefaultCommand: "server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing maze configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, setupLogging(cmd.String("log-level"), cmd.Bool("debug"))
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run the HTTP server with API, WebSocket and MCP endpoint",
				Flags:   append(httpFlags(), append(storeFlags(), ngrokFlags()...)...),
				Action:  runServer,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "run an MCP stdio server",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Value:   "http://localhost:8080",
						Usage:   "REST API to proxy; an internal server starts when it is unreachable",
						Sources: cli.EnvVars("API_URL"),
					},
				}, storeFlags()...),
				Action: runStdioMCP,
			},
			{
				Name:      "validate",
				Usage:     "validate maze configuration files",
				ArgsUsage: "[config.json ...]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if !runValidate(os.Stdout, cmd.String("config-dir"), cmd.Args().Slice()) {
						return cli.Exit("some configurations have errors", 1)
					}
					return nil
				},
			},
			{
				Name:  "simulate",
				Usage: "play a scripted round headlessly",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "maze config name (default config when empty)"},
					&cli.Int64Flag{Name: "seed", Value: 1, Usage: "random seed for the pursuers"},
					&cli.StringSliceFlag{Name: "moves", Usage: "comma separated directions, e.g. down,down,right"},
					&cli.IntFlag{Name: "tick-every", Value: 1, Usage: "advance pursuers after every N moves (0 disables ticks)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					configs, err := config.NewManager(cmd.String("config-dir"))
					if err != nil {
						return err
					}
					name := cmd.String("config")
					if name == "" {
						name = configs.DefaultID()
					}
					cfg, err := configs.LoadConfig(name)
					if err != nil {
						return err
					}
					_, err = simulate(os.Stdout, cfg, cmd.Int64("seed"), cmd.StringSlice("moves"), cmd.Int("tick-every"))
					return err
				},
			},
		},
	}
}

func httpFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
		&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "store", Value: "file", Usage: "session store: file, redis or mongo", Sources: cli.EnvVars("SESSION_STORE")},
		&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "directory for the file store", Sources: cli.EnvVars("SESSIONS_DIR")},
		&cli.StringFlag{Name: "redis-addr", Value: "localhost:6379", Usage: "Redis address", Sources: cli.EnvVars("REDIS_ADDR")},
		&cli.StringFlag{Name: "redis-password", Usage: "Redis password", Sources: cli.EnvVars("REDIS_PASSWORD")},
		&cli.IntFlag{Name: "redis-db", Usage: "Redis database", Sources: cli.EnvVars("REDIS_DB")},
		&cli.StringFlag{Name: "mongo-uri", Value: "mongodb://localhost:27017", Usage: "MongoDB connection URI", Sources: cli.EnvVars("MONGO_URI")},
		&cli.StringFlag{Name: "mongo-db", Value: "maze", Usage: "MongoDB database", Sources: cli.EnvVars("MONGO_DB")},
		&cli.StringFlag{Name: "mongo-collection", Value: "sessions", Usage: "MongoDB collection", Sources: cli.EnvVars("MONGO_COLLECTION")},
		&cli.DurationFlag{Name: "session-ttl", Value: 24 * time.Hour, Usage: "idle time before a session expires", Sources: cli.EnvVars("SESSION_TTL")},
		&cli.DurationFlag{Name: "autosave", Value: 30 * time.Second, Usage: "interval between saves of all sessions (0 disables)", Sources: cli.EnvVars("AUTOSAVE_INTERVAL")},
	}
}

func ngrokFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
	}
}

// setupLogging configures logrus from the level name; debug wins over it
func setupLogging(level string, debug bool) error {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if debug {
		log.SetLevel(log.DebugLevel)
		return nil
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)
	return nil
}

// storeOptions selects and configures the session store
type storeOptions struct {
	Kind            string
	SessionsDir     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	MongoURI        string
	MongoDB         string
	MongoCollection string
	TTL             time.Duration
}

func storeOptionsFrom(cmd *cli.Command) storeOptions {
	return storeOptions{
		Kind:            cmd.String("store"),
		SessionsDir:     cmd.String("sessions-dir"),
		RedisAddr:       cmd.String("redis-addr"),
		RedisPassword:   cmd.String("redis-password"),
		RedisDB:         cmd.Int("redis-db"),
		MongoURI:        cmd.String("mongo-uri"),
		MongoDB:         cmd.String("mongo-db"),
		MongoCollection: cmd.String("mongo-collection"),
		TTL:             cmd.Duration("session-ttl"),
	}
}

// openStore connects the configured session store. The returned func
// releases its connections.
func openStore(ctx context.Context, opts storeOptions) (session.SessionPersistence, func(), error) {
	switch opts.Kind {
	case "", "file":
		store, err := session.NewFilePersistence(opts.SessionsDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.RedisAddr, err)
		}
		return session.NewRedisPersistence(client, opts.TTL), func() { client.Close() }, nil

	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			client.Disconnect(ctx)
		}
		return session.NewMongoPersistence(client, opts.MongoDB, opts.MongoCollection), closeFn, nil
	}

	return nil, nil, fmt.Errorf("unknown session store %q (use file, redis or mongo)", opts.Kind)
}

// app holds the wired services of a running server
type app struct {
	configs  *config.Manager
	store    session.SessionPersistence
	sessions *session.Manager
	service  service.GameService
	hub      *websocket.Hub
	close    func()
}

// buildApp wires config and session managers, the game service and the
// WebSocket hub. Round updates from every session are broadcast by the hub.
func buildApp(ctx context.Context, configDir string, opts storeOptions) (*app, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	store, closeStore, err := openStore(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	hub := websocket.NewHub()
	sessionManager := session.NewManagerWithPersistence(store,
		session.WithNotifier(hub.BroadcastToSession),
		session.WithContext(ctx),
	)

	if err := sessionManager.LoadPersistedSessions(ctx); err != nil {
		log.WithError(err).Warn("failed to load persisted sessions")
	}

	gameService := service.NewGameService(sessionManager, configManager)
	hub.AttachService(gameService)

	return &app{
		configs:  configManager,
		store:    store,
		sessions: sessionManager,
		service:  gameService,
		hub:      hub,
		close: func() {
			sessionManager.Close()
			closeStore()
		},
	}, nil
}

// background starts the hub and the maintenance routines; they stop with ctx
func (a *app) background(ctx context.Context, wg *sync.WaitGroup, ttl, autosave time.Duration) {
	wg.Add(3)
	go func() {
		defer wg.Done()
		a.hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, a.sessions, ttl)
	}()
	go func() {
		defer wg.Done()
		storeSyncRoutine(ctx, a.sessions, a.store)
	}()

	if autosave > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			autosaveRoutine(ctx, a.sessions, autosave)
		}()
	}
}

// shutdown saves every session, then stops round loops and closes the store
func (a *app) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.sessions.SaveAllSessions(ctx); err != nil {
		log.WithError(err).Warn("failed to save sessions on shutdown")
	}
	a.close()
}

// mcpHandler serves single JSON-RPC MCP messages over HTTP POST
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runServer starts the HTTP server with REST API, WebSocket hub and an /mcp
// proxy endpoint. With --ngrok it also provisions a public tunnel.
func runServer(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := storeOptionsFrom(cmd)
	a, err := buildApp(ctx, cmd.String("config-dir"), opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	var wg sync.WaitGroup
	a.background(ctx, &wg, opts.TTL, cmd.Duration("autosave"))

	apiServer := api.NewServer(a.service, a.hub)
	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))

	// MCP endpoint proxies back into this server's API
	mcpClient := mcp.NewClient("http://" + addr)
	apiServer.Router().Handle("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      apiServer,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.WithFields(log.Fields{
		"version": Version,
		"store":   opts.Kind,
		"configs": cmd.String("config-dir"),
	}).Infof("starting %s", AppName)

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"api":  fmt.Sprintf("http://%s/api", addr),
			"ws":   fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp":  fmt.Sprintf("http://%s/mcp", addr),
			"addr": addr,
		}).Info("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, apiServer, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"))
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-serverErr:
		log.WithError(err).Error("HTTP server failed")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	a.shutdown()
	log.Info("server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, handler http.Handler, authToken, domain string) {
	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	log.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.WithField("domain", domain).Info("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.WithError(err).Error("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.WithFields(log.Fields{
		"api": ngrokURL + "/api",
		"ws":  ngrokURL + "/ws?session=<session_id>",
		"mcp": ngrokURL + "/mcp",
	}).Infof("ngrok tunnel established: %s", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.WithError(err).Warn("ngrok server error")
	}
	log.Info("ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.WithField("removed", removed).Info("cleaned up expired sessions")
			}
		}
	}
}

// autosaveRoutine periodically saves every in-memory session
func autosaveRoutine(ctx context.Context, manager *session.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := manager.SaveAllSessions(ctx); err != nil {
				log.WithError(err).Warn("autosave failed")
			}
		}
	}
}

// storeSyncRoutine drops in-memory sessions whose stored record disappeared,
// e.g. a deleted session file or an expired Redis key
func storeSyncRoutine(ctx context.Context, manager *session.Manager, store session.SessionPersistence) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := pruneOrphans(ctx, manager, store); n > 0 {
				log.WithField("pruned", n).Info("store sync pruned orphaned sessions")
			}
		}
	}
}

func pruneOrphans(ctx context.Context, manager *session.Manager, store session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if store.Exists(ctx, sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			log.WithField("session", sess.ID).Debug("pruned session from memory (record deleted)")
		}
	}
	return pruned
}

// runStdioMCP runs an MCP stdio server. It reuses the API at --api-url when
// reachable, otherwise it starts an internal HTTP API on a random loopback
// port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	baseURL := strings.TrimRight(cmd.String("api-url"), "/")
	log.WithField("url", baseURL).Info("checking for external API server")

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/health")
	if err == nil {
		resp.Body.Close()
	}
	if err == nil && resp.StatusCode < 500 {
		log.WithField("url", baseURL).Info("external API server found, using it for MCP")
	} else {
		log.Info("no external API server found, starting internal HTTP server")

		a, err := buildApp(ctx, cmd.String("config-dir"), storeOptionsFrom(cmd))
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		var wg sync.WaitGroup
		a.background(ctx, &wg, cmd.Duration("session-ttl"), cmd.Duration("autosave"))
		defer func() {
			stop()
			wg.Wait()
			a.shutdown()
		}()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		httpServer := &http.Server{Handler: api.NewServer(a.service, a.hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		log.WithField("url", baseURL).Info("internal HTTP server started for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	// Logs go to stderr; stdout carries the protocol
	return server.ServeStdio(mcpClient.GetMCPServer())
}

// runValidate prints a report for the given files, or for every config in
// dir when none are given. It reports whether all of them are valid.
func runValidate(w io.Writer, dir string, files []string) bool {
	var results []validate.Result
	if len(files) == 0 {
		var err error
		results, err = validate.Dir(dir)
		if err != nil {
			fmt.Fprintf(w, "Error finding config files: %v\n", err)
			return false
		}
	} else {
		for _, file := range files {
			results = append(results, validate.File(file))
		}
	}

	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)
		if result.Valid {
			fmt.Fprintln(w, "VALID")
		} else {
			fmt.Fprintln(w, "INVALID")
			allValid = false
			for _, e := range result.Errors {
				fmt.Fprintln(w, "  error: "+e)
			}
		}
		for _, info := range result.Info {
			fmt.Fprintln(w, "  "+info)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintf(w, "All %d configurations are valid\n", len(results))
	} else {
		fmt.Fprintln(w, "Some configurations have errors")
	}
	return allValid
}

// simulate plays moves against a fresh seeded engine, ticking the pursuers
// after every tickEvery accepted or rejected moves
func simulate(w io.Writer, cfg *engine.GameConfig, seed int64, moves []string, tickEvery int) (*engine.GameState, error) {
	e, err := engine.NewEngine(cfg, engine.WithSeed(seed))
	if err != nil {
		return nil, err
	}
	state := e.StartRound()
	fmt.Fprintf(w, "Round %s on %s (seed %d)\n", state.RoundID, cfg.Name, seed)
	fmt.Fprintf(w, "Start (%d,%d), goal (%d,%d), %d pursuers\n",
		state.PlayerPos.X, state.PlayerPos.Y, state.Goal.X, state.Goal.Y, len(state.Pursuers))

	for i, raw := range moves {
		if e.Phase() != engine.PhaseActive {
			break
		}

		dir := engine.ParseDirection(raw)
		if dir == engine.DirectionNone {
			fmt.Fprintf(w, "%3d %-5s ignored\n", i+1, raw)
			continue
		}
		result := e.Command(dir)
		status := "ok"
		if !result.Accepted {
			status = "blocked"
		}
		fmt.Fprintf(w, "%3d %-5s (%d,%d) -> (%d,%d) %s\n", i+1, dir, result.From.X, result.From.Y, result.To.X, result.To.Y, status)

		if tickEvery > 0 && (i+1)%tickEvery == 0 && e.Tick() {
			var positions []string
			for _, p := range e.GetPursuers() {
				positions = append(positions, fmt.Sprintf("%s(%d,%d)", p.ID, p.Pos.X, p.Pos.Y))
			}
			fmt.Fprintf(w, "    tick: %s\n", strings.Join(positions, " "))
		}
	}

	final := e.GetState()
	fmt.Fprintf(w, "Outcome: %s after %d moves and %d ticks\n", final.Outcome, final.Moves, final.Ticks)
	if final.Message != "" {
		fmt.Fprintln(w, final.Message)
	}
	return final, nil
}
