// Package tools provides a metadata-driven registry for MCP tool definitions.
// Tools are declared once in AllTools and bound to typed wiki.Client
// methods by the HandlerRegistry.
package tools

// ToolSpec defines a tool's metadata for declarative registration.
// Each spec maps to a wiki client method with matching Args/Result types.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "mediawiki_list_all_pages")
	Name string

	// Method is the client method name (e.g., "ListAllPages")
	Method string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (pages, categories, activity, ...)
	Category string

	// ReadOnly indicates the tool doesn't modify wiki state
	ReadOnly bool

	// Destructive indicates the tool can delete or overwrite data
	Destructive bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses external resources
	OpenWorld bool
}

// ToolsByCategory returns the specs of one category in catalogue order.
func ToolsByCategory(category string) []ToolSpec {
	var out []ToolSpec
	for _, spec := range AllTools {
		if spec.Category == category {
			out = append(out, spec)
		}
	}
	return out
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}
