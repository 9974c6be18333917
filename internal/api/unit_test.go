package api

import (
	"strings"
	"testing"
	"time"
)

func TestSecureCookieCodecRoundTripBindsPurpose(t *testing.T) {
	codec, err := newSecureCookieCodec([]byte("test-secret-key"))
	if err != nil {
		t.Fatalf("init codec: %v", err)
	}

	sealed, err := codec.seal("auth", []byte("payload"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if !strings.HasPrefix(sealed, secureCookieVersion+".") {
		t.Fatalf("expected versioned value, got %q", sealed)
	}

	opened, err := codec.open("auth", sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(opened) != "payload" {
		t.Fatalf("expected payload, got %q", string(opened))
	}

	if _, err := codec.open("lang", sealed); err == nil {
		t.Fatal("expected purpose mismatch to fail")
	}

	other, err := newSecureCookieCodec([]byte("another-secret"))
	if err != nil {
		t.Fatalf("init second codec: %v", err)
	}
	if _, err := other.open("auth", sealed); err == nil {
		t.Fatal("expected foreign key to fail")
	}
}

func TestSecureCookieCodecRequiresKey(t *testing.T) {
	if _, err := newSecureCookieCodec(nil); err == nil {
		t.Fatal("expected empty key to be rejected")
	}
}

func TestAttemptLimiterWindow(t *testing.T) {
	limiter := newAttemptLimiter()
	now := time.Date(2026, time.April, 20, 10, 0, 0, 0, time.UTC)

	for index := 0; index < 3; index++ {
		limiter.addFailure("ip", now.Add(time.Duration(index)*time.Minute), 10*time.Minute)
	}
	if !limiter.tooManyRecent("ip", now.Add(3*time.Minute), 3, 10*time.Minute) {
		t.Fatal("expected limit to be reached")
	}
	if limiter.tooManyRecent("ip", now.Add(11*time.Minute), 3, 10*time.Minute) {
		t.Fatal("expected the oldest failure to fall out of the window")
	}

	limiter.reset("ip")
	if limiter.tooManyRecent("ip", now, 1, 10*time.Minute) {
		t.Fatal("expected reset to clear failures")
	}
}
