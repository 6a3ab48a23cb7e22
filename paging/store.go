package paging

// Transition classifies what a new continuation marker means for an enumeration.
type Transition int

const (
	// Progressed means the server handed back a marker not seen in the history window.
	Progressed Transition = iota
	// Repeated means the server returned a marker it already returned.
	Repeated
	// Completed means the server returned no marker.
	Completed
)

func (t Transition) String() string {
	switch t {
	case Progressed:
		return "progressed"
	case Repeated:
		return "repeated"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// DefaultHistoryWindow compares only against the immediately previous marker.
const DefaultHistoryWindow = 1

// Store holds the resume state of one enumeration and a short history of
// markers for loop detection. It is not safe for concurrent use.
type Store struct {
	current Marker
	history []Marker
	window  int
}

// NewStore creates a store remembering the last window markers.
// A window below 1 is treated as DefaultHistoryWindow.
func NewStore(window int) *Store {
	if window < 1 {
		window = DefaultHistoryWindow
	}
	return &Store{window: window}
}

// Reset forgets the current marker and the history.
func (s *Store) Reset() {
	s.current = nil
	s.history = s.history[:0]
}

// Current returns the marker for the next request, or nil at the start.
func (s *Store) Current() Marker {
	return s.current.Clone()
}

// Advance records next as the current marker and classifies the step.
//
// The previous marker is pushed into the history window before the
// comparison, so with the default window a marker is Repeated only when it
// equals the one that produced the batch just received.
func (s *Store) Advance(next Marker) Transition {
	if s.current != nil {
		s.history = append(s.history, s.current)
		if len(s.history) > s.window {
			s.history = s.history[len(s.history)-s.window:]
		}
	}

	if next.IsEmpty() {
		s.current = nil
		return Completed
	}

	s.current = next.Clone()
	for _, seen := range s.history {
		if seen.Equal(next) {
			return Repeated
		}
	}
	return Progressed
}

// History returns the remembered markers, oldest first.
func (s *Store) History() []Marker {
	out := make([]Marker, len(s.history))
	for i, m := range s.history {
		out[i] = m.Clone()
	}
	return out
}
