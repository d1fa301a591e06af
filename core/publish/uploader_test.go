package publish

import (
	"strings"
	"testing"
)

func TestSafeObjectNameSanitizes(t *testing.T) {
	got := safeObjectName("My  Kick (final)!.wav")
	if !strings.HasPrefix(got, "My_Kick_final_") {
		t.Fatalf("unexpected sanitized base: %q", got)
	}
	if !strings.HasSuffix(got, ".wav") {
		t.Fatalf("extension lost: %q", got)
	}
}

func TestSafeObjectNameNeverCollides(t *testing.T) {
	a := safeObjectName("kick.wav")
	b := safeObjectName("kick.wav")
	if a == b {
		t.Fatalf("two uploads of the same filename mapped to one key: %q", a)
	}
}

func TestSafeObjectNameHandlesDegenerateInput(t *testing.T) {
	got := safeObjectName("!!!")
	if !strings.HasPrefix(got, "asset_") || !strings.HasSuffix(got, ".dat") {
		t.Fatalf("degenerate filename not defaulted: %q", got)
	}
	long := strings.Repeat("a", 300) + ".wav"
	if name := safeObjectName(long); len(name) > 120 {
		t.Fatalf("overlong base not truncated: %d chars", len(name))
	}
}
