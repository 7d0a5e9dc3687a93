package ids_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/Tiliavir/daily-hours/internal/ids"
)

func TestUUID(t *testing.T) {
	a, b := ids.UUID(), ids.UUID()
	if a == b {
		t.Fatalf("UUID returned %q twice", a)
	}
	u, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("uuid.Parse(%q): %v", a, err)
	}
	if u.Version() != 4 {
		t.Errorf("version = %d, want 4", u.Version())
	}
}

func TestSequence(t *testing.T) {
	gen := ids.Sequence("t")
	for _, want := range []string{"t-1", "t-2", "t-3"} {
		if got := gen(); got != want {
			t.Errorf("Sequence = %q, want %q", got, want)
		}
	}
}
