package httpmiddleware

import (
	"testing"
	"time"
)

func TestAllowConsumesTokens(t *testing.T) {
	l := NewSimpleTokenBucket(3, 60)
	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d denied within capacity", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("request past capacity allowed")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := NewSimpleTokenBucket(1, 60)
	if !l.Allow("1.2.3.4") {
		t.Fatal("first key denied")
	}
	if !l.Allow("5.6.7.8") {
		t.Error("second key denied although it never made a request")
	}
}

func TestAllowRefillsOverTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	l := NewSimpleTokenBucket(2, 60)
	l.now = func() time.Time { return now }

	l.Allow("1.2.3.4")
	l.Allow("1.2.3.4")
	if l.Allow("1.2.3.4") {
		t.Fatal("bucket should be empty")
	}

	// One minute at 60/min refills to capacity.
	now = now.Add(time.Minute)
	if !l.Allow("1.2.3.4") {
		t.Error("bucket should have refilled after a minute")
	}
}
