package cache

import (
	"testing"
	"time"

	"github.com/kaju0475/samduk/internal/domain"
)

func TestSessionRecordRoundTrip(t *testing.T) {
	in := domain.Session{
		ID:        "sess_1",
		UserID:    "user_1",
		ExpiresAt: time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC),
		Revoked:   true,
	}
	raw, err := encodeSession(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := decodeSession(in.ID, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch:\n in  %+v\n out %+v", in, out)
	}
}

func TestDecodeSessionRejectsGarbage(t *testing.T) {
	if _, err := decodeSession("sess_1", []byte("revoked|user_1|not-json")); err == nil {
		t.Fatal("garbage payload must not decode silently")
	}
}
