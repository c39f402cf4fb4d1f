package event

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	e, err := Decode(`{"event":"load"}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Kind != Load {
		t.Fatalf("expected %q, got %q", Load, e.Kind)
	}

	tests := []string{``, `load`, `{}`, `{"event":1}`, `[]`}
	for _, raw := range tests {
		if _, err := Decode(raw); !errors.Is(err, ErrMalformed) {
			t.Fatalf("decode %q: expected ErrMalformed, got %v", raw, err)
		}
	}
}

func TestRouter(t *testing.T) {
	r := NewRouter()

	loads := 0
	r.On(Load, func(e Event) error {
		loads++
		return nil
	})

	if err := r.Handle(`{"event":"load"}`); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if loads != 1 {
		t.Fatalf("expected 1 load, got %d", loads)
	}

	if err := r.Handle(`{"event":"resize"}`); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
	if err := r.Handle(`nope`); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}

	boom := errors.New("boom")
	r.On(Load, func(Event) error { return boom })
	if err := r.Handle(`{"event":"load"}`); !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
}
