package paging

import (
	"net/url"
	"testing"
)

func TestStore_Advance(t *testing.T) {
	m1 := Marker{"apcontinue": "B", "continue": "-||"}
	m2 := Marker{"apcontinue": "C", "continue": "-||"}

	tests := []struct {
		name  string
		steps []Marker
		want  []Transition
	}{
		{
			name:  "progress then complete",
			steps: []Marker{m1, m2, nil},
			want:  []Transition{Progressed, Progressed, Completed},
		},
		{
			name:  "immediate repeat",
			steps: []Marker{m1, m1},
			want:  []Transition{Progressed, Repeated},
		},
		{
			name:  "repeat detected by value not identity",
			steps: []Marker{m1, {"continue": "-||", "apcontinue": "B"}},
			want:  []Transition{Progressed, Repeated},
		},
		{
			name:  "A-B-A is not a repeat with the default window",
			steps: []Marker{m1, m2, m1},
			want:  []Transition{Progressed, Progressed, Progressed},
		},
		{
			name:  "empty marker completes",
			steps: []Marker{{}},
			want:  []Transition{Completed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(0)
			for i, step := range tt.steps {
				if got := s.Advance(step); got != tt.want[i] {
					t.Errorf("step %d: Advance(%v) = %v, want %v", i, step, got, tt.want[i])
				}
			}
		})
	}
}

func TestStore_WiderWindow(t *testing.T) {
	a := Marker{"continue": "A"}
	b := Marker{"continue": "B"}

	s := NewStore(2)
	s.Advance(a)
	s.Advance(b)
	if got := s.Advance(a); got != Repeated {
		t.Errorf("Advance(A) after A,B = %v, want repeated", got)
	}
	if got := len(s.History()); got != 2 {
		t.Errorf("history length = %d, want 2", got)
	}
}

func TestStore_CurrentAndReset(t *testing.T) {
	s := NewStore(1)
	if s.Current() != nil {
		t.Errorf("Current() at start = %v, want nil", s.Current())
	}

	s.Advance(Marker{"rccontinue": "x"})
	cur := s.Current()
	if cur["rccontinue"] != "x" {
		t.Errorf("Current() = %v, want rccontinue=x", cur)
	}

	// Callers get a copy.
	cur["rccontinue"] = "changed"
	if s.Current()["rccontinue"] != "x" {
		t.Error("mutating Current() result changed the store")
	}

	s.Reset()
	if s.Current() != nil || len(s.History()) != 0 {
		t.Errorf("after Reset: current = %v, history = %v", s.Current(), s.History())
	}
}

func TestStore_CompletedClearsCurrent(t *testing.T) {
	s := NewStore(1)
	s.Advance(Marker{"continue": "A"})
	s.Advance(nil)
	if s.Current() != nil {
		t.Errorf("Current() after completion = %v, want nil", s.Current())
	}
}

func TestTransition_String(t *testing.T) {
	tests := map[Transition]string{
		Progressed:     "progressed",
		Repeated:       "repeated",
		Completed:      "completed",
		Transition(42): "unknown",
	}
	for tr, want := range tests {
		if got := tr.String(); got != want {
			t.Errorf("Transition(%d).String() = %q, want %q", int(tr), got, want)
		}
	}
}

func TestMarker(t *testing.T) {
	m := Marker{"gapcontinue": "Foo", "continue": "gapcontinue||"}

	if m.IsEmpty() || !Marker(nil).IsEmpty() || !(Marker{}).IsEmpty() {
		t.Error("IsEmpty() misreports")
	}
	if !m.Equal(m.Clone()) {
		t.Error("clone should equal original")
	}
	if m.Equal(Marker{"gapcontinue": "Foo"}) {
		t.Error("markers with different key sets should differ")
	}
	if got, want := m.String(), "{continue=gapcontinue|| gapcontinue=Foo}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := Marker(nil).String(); got != "{}" {
		t.Errorf("empty String() = %q, want {}", got)
	}

	params := url.Values{"gapcontinue": {"old"}, "action": {"query"}}
	m.Apply(params)
	if params.Get("gapcontinue") != "Foo" || params.Get("continue") != "gapcontinue||" || params.Get("action") != "query" {
		t.Errorf("Apply() = %v", params)
	}
}
