package paging

import (
	"fmt"
	"strings"
)

// LoopBehavior selects how an engine reacts to a repeated continuation marker.
type LoopBehavior int

const (
	// Throw stops the enumeration with a *ContinuationLoopError.
	Throw LoopBehavior = iota
	// FetchMore re-issues the request once with the same marker and keeps
	// whatever the server returns. Items are not deduplicated.
	FetchMore
)

func (b LoopBehavior) String() string {
	switch b {
	case Throw:
		return "throw"
	case FetchMore:
		return "fetch-more"
	default:
		return fmt.Sprintf("LoopBehavior(%d)", int(b))
	}
}

// ParseLoopBehavior accepts "throw" and "fetch-more" (also "fetchmore", "fetch_more").
// An empty string yields Throw.
func ParseLoopBehavior(s string) (LoopBehavior, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "throw":
		return Throw, nil
	case "fetch-more", "fetchmore", "fetch_more":
		return FetchMore, nil
	default:
		return Throw, fmt.Errorf("unknown continuation loop behavior %q (want throw or fetch-more)", s)
	}
}

func (b LoopBehavior) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *LoopBehavior) UnmarshalText(text []byte) error {
	parsed, err := ParseLoopBehavior(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// CompatibilityOptions describes how to treat servers with broken continuation.
// Engines copy the value at construction.
type CompatibilityOptions struct {
	ContinuationLoop LoopBehavior `yaml:"continuation_loop" json:"continuation_loop"`

	// HistoryWindow is how many past markers count as "seen". Zero means
	// DefaultHistoryWindow, which only catches an immediate repeat.
	HistoryWindow int `yaml:"history_window" json:"history_window"`
}

// DefaultCompatibility throws on the first repeated marker.
func DefaultCompatibility() CompatibilityOptions {
	return CompatibilityOptions{ContinuationLoop: Throw, HistoryWindow: DefaultHistoryWindow}
}
