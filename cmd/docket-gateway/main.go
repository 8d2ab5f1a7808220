// ABOUTME: Entry point for the docket-gateway conversation server
// ABOUTME: Serves the WebSocket chat endpoint and session management tooling

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/docketry/docket-gateway/internal/agents"
	"github.com/docketry/docket-gateway/internal/auth"
	"github.com/docketry/docket-gateway/internal/chatws"
	"github.com/docketry/docket-gateway/internal/checkpoint"
	"github.com/docketry/docket-gateway/internal/clientdb"
	"github.com/docketry/docket-gateway/internal/config"
	"github.com/docketry/docket-gateway/internal/llm"
	"github.com/docketry/docket-gateway/internal/prompts"
	"github.com/docketry/docket-gateway/internal/system"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
     _            _        _
  __| | ___   ___| | _____| |_      __ _  __ _| |_ _____      ____ _ _   _
 / _' |/ _ \ / __| |/ / _ \ __|____/ _' |/ _' | __/ _ \ \ /\ / / _' | | | |
| (_| | (_) | (__|   <  __/ ||_____| (_| | (_| | ||  __/\ V  V / (_| | |_| |
 \__,_|\___/ \___|_|\_\___|\__|     \__, |\__,_|\__\___| \_/\_/ \__,_|\__, |
                                    |___/                             |___/
`

func getConfigPath() string {
	if envPath := os.Getenv("DOCKET_CONFIG"); envPath != "" {
		return envPath
	}
	return "gateway.yaml"
}

func main() {
	// Local development keeps secrets in .env; absence is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println("Usage: docket-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                       Start the chat gateway server")
		fmt.Println("  token --user ID [--name N]  Mint a session token")
		fmt.Println("  client-add                  Add a client to the directory")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "token":
		err = runToken()
	case "client-add":
		err = runClientAdd(ctx)
	default:
		err = fmt.Errorf("unknown command: %s", os.Args[1])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config: %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:   %s\n", cfg.Server.HTTPAddr)
	fmt.Println()

	logger.Info("starting docket-gateway",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
	)

	clients, err := clientdb.Open(cfg.Database.ClientsPath)
	if err != nil {
		return fmt.Errorf("opening client directory: %w", err)
	}
	defer clients.Close()

	checkpoints := checkpoint.NewManager(cfg.Database.CheckpointPath, logger)
	defer checkpoints.Release()

	model := llm.NewAnthropicClient(cfg.LLM.APIKey, cfg.LLM.Model, logger)
	registry := prompts.NewRegistry(cfg.Agents.PromptsDir, logger)
	verifier := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))

	deps := agents.Deps{
		Model:   model,
		Prompts: registry,
		Clients: clients,
		Logger:  logger,
	}
	builders := []agents.Builder{
		agents.NewEmailBuilder(deps),
		agents.NewCalendarBuilder(deps),
		agents.NewLegalDocsBuilder(deps, cfg.Agents.LegalDocs.BaseURL, cfg.Agents.LegalDocs.APIKey),
	}
	supervisor := agents.NewSupervisorBuilder(deps, cfg.Agents.Search.APIKey)

	sessions := func(threadID string) *system.Manager {
		return system.NewManager(builders, supervisor, checkpoints, model, threadID, logger)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", chatws.NewHandler(verifier, sessions, logger))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

func runToken() error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	userID := fs.String("user", "", "user id (sub claim)")
	fullName := fs.String("name", "", "user full name")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(os.Args[2:]); err != nil {
		return err
	}
	if *userID == "" {
		return fmt.Errorf("--user is required")
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	verifier := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	token, err := verifier.Generate(*userID, *fullName, *ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Println(token)
	return nil
}

func runClientAdd(ctx context.Context) error {
	fs := flag.NewFlagSet("client-add", flag.ExitOnError)
	userID := fs.String("user", "", "owning user id")
	first := fs.String("first", "", "client first name")
	last := fs.String("last", "", "client last name")
	email := fs.String("email", "", "client email address")
	birthdate := fs.String("birthdate", "", "client birthdate (YYYY-MM-DD, optional)")
	if err := fs.Parse(os.Args[2:]); err != nil {
		return err
	}
	if *userID == "" || *first == "" || *last == "" || *email == "" {
		return fmt.Errorf("--user, --first, --last, and --email are required")
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	clients, err := clientdb.Open(cfg.Database.ClientsPath)
	if err != nil {
		return fmt.Errorf("opening client directory: %w", err)
	}
	defer clients.Close()

	client := &clientdb.Client{
		ID:        uuid.NewString(),
		UserID:    *userID,
		FirstName: *first,
		LastName:  *last,
		Email:     *email,
		Birthdate: *birthdate,
	}
	if err := clients.CreateClient(ctx, client); err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	fmt.Printf("Added client %s %s <%s> (id %s)\n", *first, *last, *email, client.ID)
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
