// MediaWiki List Server - an MCP server that enumerates MediaWiki lists
// (all pages, categories, recent changes, search, logs, contributions,
// backlinks and Wikibase entity search) with bounded, lazy pagination.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olgasafonova/mediawiki-list-client/tools"
	"github.com/olgasafonova/mediawiki-list-client/tracing"
	"github.com/olgasafonova/mediawiki-list-client/wiki"
)

// recoverPanic logs a panic instead of crashing the process
func recoverPanic(logger *slog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error("Panic recovered",
			"operation", operation,
			"panic", r,
			"stack", string(debug.Stack()))
	}
}

const (
	ServerName    = "mediawiki-list-server"
	ServerVersion = "1.0.0"
)

const instructions = `MediaWiki List Server enumerates long MediaWiki lists one bounded slice at a time.

Every list tool takes a limit (default 50, max 500) and returns has_more when the wiki holds more.
Narrow the filters (prefix, namespace, time window, user) to go deeper instead of raising the limit.

Configure via environment variables or a YAML file (-config):
- MEDIAWIKI_URL: Wiki API URL (e.g., https://en.wikipedia.org/w/api.php)
- MEDIAWIKI_LOOP_BEHAVIOR: throw (default) or fetch-more for servers that repeat continuation markers`

type options struct {
	configPath  string
	httpAddr    string
	showVersion bool
	token       string
	rateLimit   int
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet(ServerName, flag.ContinueOnError)
	var opts options
	fs.StringVar(&opts.configPath, "config", os.Getenv("MEDIAWIKI_CONFIG"), "YAML configuration file")
	fs.StringVar(&opts.httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio (e.g. :8080)")
	fs.BoolVar(&opts.showVersion, "version", false, "print the version and exit")
	fs.StringVar(&opts.token, "token", os.Getenv("MCP_AUTH_TOKEN"), "bearer token required in HTTP mode")
	fs.IntVar(&opts.rateLimit, "rate-limit", envInt("MCP_RATE_LIMIT", 60), "HTTP requests per minute per client, 0 disables")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func main() {
	// Configure logging to stderr (stdout is used for MCP protocol)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	_ = godotenv.Load()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if opts.showVersion {
		fmt.Println(ServerName, ServerVersion)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	defer recoverPanic(logger, "run")

	config, err := wiki.LoadConfigFile(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	traceConfig := tracing.DefaultConfig()
	traceConfig.ServiceName = ServerName
	traceConfig.ServiceVersion = ServerVersion
	shutdown, err := tracing.Setup(ctx, traceConfig)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	client := wiki.NewClient(config, logger)
	defer client.Close()

	server := newServer(client, logger)

	logger.Info("Starting MediaWiki List Server",
		"name", ServerName,
		"version", ServerVersion,
		"wiki_url", config.BaseURL,
		"loop_behavior", config.Compatibility.ContinuationLoop.String(),
	)

	if opts.httpAddr == "" {
		return server.Run(ctx, &mcp.StdioTransport{})
	}
	return serveHTTP(ctx, server, opts, logger)
}

func newServer(client *wiki.Client, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: instructions,
	})
	tools.NewHandlerRegistry(client, logger).RegisterAll(server)
	return server
}

// newMux routes the MCP endpoint behind the security middleware and
// exposes /metrics and /health next to it.
func newMux(server *mcp.Server, opts options, logger *slog.Logger) (*http.ServeMux, func()) {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	guard := NewSecurityMiddleware(handler, logger, SecurityConfig{
		RateLimit:   opts.rateLimit,
		MaxBodySize: 1 << 20,
		BearerToken: opts.token,
	})

	mux := http.NewServeMux()
	mux.Handle("/mcp", guard)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","version":%q}`, ServerVersion)
	})
	return mux, guard.Close
}

func serveHTTP(ctx context.Context, server *mcp.Server, opts options, logger *slog.Logger) error {
	mux, closeGuard := newMux(server, opts, logger)
	defer closeGuard()

	httpServer := &http.Server{
		Addr:              opts.httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(sctx)
	}()

	logger.Info("Listening for streamable HTTP", "addr", opts.httpAddr, "auth", opts.token != "")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
