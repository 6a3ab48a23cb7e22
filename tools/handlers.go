package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/mediawiki-list-client/metrics"
	"github.com/olgasafonova/mediawiki-list-client/tracing"
	"github.com/olgasafonova/mediawiki-list-client/wiki"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	client *wiki.Client
	logger *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(client *wiki.Client, logger *slog.Logger) *HandlerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &HandlerRegistry{
		client: client,
		logger: logger,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	registered := 0
	for _, spec := range AllTools {
		if h.registerByName(server, spec) {
			registered++
		}
	}
	h.logger.Info("Registered all tools", "count", registered)
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) bool {
	tool := h.buildTool(spec)
	c := h.client

	switch spec.Method {
	case "ListAllPages":
		register(h, server, tool, spec, c.ListAllPagesMCP)
	case "Backlinks":
		register(h, server, tool, spec, c.BacklinksMCP)
	case "ListAllCategories":
		register(h, server, tool, spec, c.ListAllCategoriesMCP)
	case "CategoryMembers":
		register(h, server, tool, spec, c.CategoryMembersMCP)
	case "CategoryMembersBatch":
		register(h, server, tool, spec, c.CategoryMembersBatchMCP)
	case "RecentChanges":
		register(h, server, tool, spec, c.RecentChangesMCP)
	case "LogEvents":
		register(h, server, tool, spec, c.LogEventsMCP)
	case "UserContributions":
		register(h, server, tool, spec, c.UserContributionsMCP)
	case "Search":
		register(h, server, tool, spec, c.SearchMCP)
	case "EntitySearch":
		register(h, server, tool, spec, c.EntitySearchMCP)
	case "SiteInfo":
		register(h, server, tool, spec, c.SiteInfoMCP)
	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
		return false
	}
	return true
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register adds one typed tool to the server. The client method is wrapped
// with panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (*mcp.CallToolResult, Result, error) {
		return invoke(h, ctx, spec, args, method)
	})
}

// invoke runs one tool call. It is split from register so it can be
// exercised without an MCP session.
func invoke[Args, Result any](
	h *HandlerRegistry,
	ctx context.Context,
	spec ToolSpec,
	args Args,
	method func(context.Context, Args) (Result, error),
) (res *mcp.CallToolResult, result Result, err error) {
	defer h.recoverPanic(spec.Name, &err)

	// Start trace span
	ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
	defer span.End()

	tracing.AddToolAttributes(span, spec.Name, spec.Category)
	span.SetAttributes(attribute.Bool("mcp.tool.readonly", spec.ReadOnly))

	// Track in-flight requests
	metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
	defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

	start := time.Now()
	result, err = method(ctx, args)
	duration := time.Since(start).Seconds()

	span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordRequest(spec.Name, duration, false)
		var zero Result
		return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
	}

	span.SetStatus(codes.Ok, "")
	metrics.RecordRequest(spec.Name, duration, true)
	h.logExecution(spec, args, result)
	return nil, result, nil
}

// recoverPanic recovers from panics in tool handlers and turns them into
// a tool error.
func (h *HandlerRegistry) recoverPanic(toolName string, err *error) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
		if err != nil {
			*err = fmt.Errorf("%s failed: internal error", toolName)
		}
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name, "category", spec.Category}

	// Add extractable fields from args using type assertions
	switch a := args.(type) {
	case wiki.ListAllPagesArgs:
		attrs = append(attrs, "prefix", a.Prefix, "namespace", a.Namespace)
	case wiki.BacklinksArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.ListAllCategoriesArgs:
		attrs = append(attrs, "prefix", a.Prefix)
	case wiki.CategoryMembersArgs:
		attrs = append(attrs, "category", a.Category)
	case wiki.CategoryMembersBatchArgs:
		attrs = append(attrs, "categories", len(a.Categories))
	case wiki.RecentChangesArgs:
		attrs = append(attrs, "user", a.User)
	case wiki.LogEventsArgs:
		attrs = append(attrs, "type", a.Type, "action", a.Action)
	case wiki.UserContributionsArgs:
		attrs = append(attrs, "user", a.User)
	case wiki.SearchArgs:
		attrs = append(attrs, "query", a.Query)
	case wiki.EntitySearchArgs:
		attrs = append(attrs, "search", a.Search, "language", a.Language)
	case wiki.SiteInfoArgs:
		// No args to log
	}

	// Add extractable fields from result
	switch r := result.(type) {
	case wiki.ListAllPagesResult:
		attrs = append(attrs, "count", r.Count, "has_more", r.HasMore, "fetches", r.Fetches)
	case wiki.BacklinksResult:
		attrs = append(attrs, "count", r.Count, "has_more", r.HasMore, "fetches", r.Fetches)
	case wiki.ListAllCategoriesResult:
		attrs = append(attrs, "count", r.Count, "has_more", r.HasMore, "fetches", r.Fetches)
	case wiki.CategoryMembersResult:
		attrs = append(attrs, "count", r.Count, "has_more", r.HasMore, "fetches", r.Fetches)
	case wiki.CategoryMembersBatchResult:
		failed := 0
		for _, entry := range r.Results {
			if entry.Error != "" {
				failed++
			}
		}
		attrs = append(attrs, "categories", r.Count, "failed", failed)
	case wiki.RecentChangesResult:
		attrs = append(attrs, "count", r.Count, "has_more", r.HasMore, "fetches", r.Fetches)
	case wiki.LogEventsResult:
		attrs = append(attrs, "count", r.Count, "has_more", r.HasMore, "fetches", r.Fetches)
	case wiki.UserContributionsResult:
		attrs = append(attrs, "count", r.Count, "has_more", r.HasMore, "fetches", r.Fetches)
	case wiki.SearchResult:
		attrs = append(attrs, "count", r.Count, "has_more", r.HasMore, "fetches", r.Fetches)
	case wiki.EntitySearchResult:
		attrs = append(attrs, "count", r.Count, "has_more", r.HasMore, "fetches", r.Fetches)
	case wiki.SiteInfo:
		attrs = append(attrs, "site", r.SiteName, "namespaces", len(r.Namespaces))
	}

	h.logger.Info("Tool executed", attrs...)
}
