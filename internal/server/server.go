package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mesa-rpg/mesa/internal/app/logger/logging"
	"github.com/mesa-rpg/mesa/internal/auth"
	"github.com/mesa-rpg/mesa/internal/database"
	"github.com/mesa-rpg/mesa/internal/metrics"
	"github.com/mesa-rpg/mesa/internal/table"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"
)

func init() {
	metrics.InitTable()
}

// Server hosts the table coordinator behind an HTTP shell: the websocket
// endpoint, the login API, the audio uploads and the meta routes.
type Server struct {
	Config      *Config
	DB          *database.SQLite
	Verifier    *auth.Verifier
	Coordinator *table.Coordinator
}

func NewServer(db *database.SQLite, opts ...Option) *Server {
	config := DefaultConfig()
	for _, fn := range opts {
		if err := fn(config); err != nil {
			panic("failed to initialize config: " + err.Error())
		}
	}

	return &Server{
		Config:      config,
		DB:          db,
		Verifier:    auth.NewVerifier(config.JWTSecret),
		Coordinator: table.NewCoordinator(db.Write),
	}
}

type Option func(*Config) error

type Config struct {
	BindAddr           string
	CORSAllowedOrigins []string
	JWTSecret          string
	GMUser             string
	GMPassword         string
	UploadDir          string
	Version            string
}

func DefaultConfig() *Config {
	return &Config{
		BindAddr:           "localhost:3000",
		CORSAllowedOrigins: []string{"*"},
		JWTSecret:          "",
		GMUser:             "mestre",
		GMPassword:         "",
		UploadDir:          "uploads",
		Version:            "dev",
	}
}

func WithBindAddr(addr string) Option {
	return func(c *Config) error {
		c.BindAddr = addr
		return nil
	}
}

func WithCORSAllowedOrigins(allowedOrigins []string) Option {
	return func(c *Config) error {
		c.CORSAllowedOrigins = allowedOrigins
		return nil
	}
}

func WithJWTSecret(secret string) Option {
	return func(c *Config) error {
		c.JWTSecret = secret
		return nil
	}
}

func WithGMCredentials(user, password string) Option {
	return func(c *Config) error {
		c.GMUser = user
		c.GMPassword = password
		return nil
	}
}

func WithUploadDir(dir string) Option {
	return func(c *Config) error {
		c.UploadDir = dir
		return nil
	}
}

func WithVersion(version string) Option {
	return func(c *Config) error {
		c.Version = version
		return nil
	}
}

func (s *Server) HttpRouter() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(middleware.Throttle(100))

	{ // Set up meta routes (readiness, liveness, metrics etc.)
		mux.Get("/_health", func(w http.ResponseWriter, r *http.Request) {
			if err := s.DB.Ping(); err != nil {
				renderJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":    "ERROR",
					"component": "database",
					"error":     err.Error(),
				})
				return
			}
			renderJSON(w, http.StatusOK, map[string]string{"status": "OK"})
		})
		mux.Get("/_metrics", promhttp.Handler().ServeHTTP)
	}

	{ // Set up the account API used by the login pages
		api := chi.NewRouter()
		api.Use(middleware.Timeout(5 * time.Second))
		api.Use(cors.New(cors.Options{
			AllowedOrigins:   s.Config.CORSAllowedOrigins,
			AllowCredentials: false,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			MaxAge:           7200,
		}).Handler)

		api.Post("/login", s.HandleLogin)
		api.Post("/register", s.HandleSignup)
		api.Post("/login-mestre", s.HandleGMLogin)
		api.Get("/me", s.HandleMe)
		mux.Mount("/api", api)
	}

	{ // Set up the audio uploads
		mux.Post("/upload-audio", s.HandleUploadAudio)
		mux.Handle("/uploads/*", http.StripPrefix("/uploads/",
			http.FileServer(http.Dir(s.Config.UploadDir))))
	}

	{ // Set up the table (websocket) route
		ws := chi.NewRouter()
		ws.Use(middleware.Timeout(24 * time.Hour))
		ws.Mount("/", http.HandlerFunc(s.HandleWebSocket))
		mux.Mount("/ws", ws)
	}

	return mux
}

func (s *Server) Handlers() (start GracefulFunc, shutdown GracefulFunc) {
	httpServer := &http.Server{
		Addr:         s.Config.BindAddr,
		Handler:      h2c.NewHandler(s.HttpRouter(), &http2.Server{}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	start = func(ctx context.Context) error {
		slog.Info("Configured table server", "addr", s.Config.BindAddr)

		go s.Coordinator.Run(ctx)
		return httpServer.ListenAndServe()
	}

	shutdown = func(ctx context.Context) error {
		slog.Info("Started shutting down the table server")

		s.Coordinator.Stop()
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.Error("Failed shutting down the table server", logging.Error(err))
			return err
		}
		slog.Info("Successfully shut down the table server")
		return nil
	}

	return start, shutdown
}

type GracefulFunc func(context.Context) error

func (s *Server) Graceful(ctx context.Context, start GracefulFunc, shutdown GracefulFunc) error {
	// Trap SIGINT and SIGTERM for the graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupContext := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := start(groupContext); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupContext.Done()

		timer, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return shutdown(timer)
	})

	return group.Wait()
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func renderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Could not render the JSON response", logging.Error(err))
	}
}
