package checkin

import (
	"testing"
	"time"
)

func TestCooldownSuppressesRepeatWithinWindow(t *testing.T) {
	now := time.Now()
	c := NewCooldown(8 * time.Second)
	c.now = func() time.Time { return now }

	if c.Recent("Jane Doe") {
		t.Fatal("first scan should not be suppressed")
	}
	now = now.Add(2 * time.Second)
	if !c.Recent("Jane Doe") {
		t.Fatal("rescan inside the window should be suppressed")
	}
	if c.Recent("Tom Doe") {
		t.Fatal("other identities are independent")
	}
}

func TestCooldownExpires(t *testing.T) {
	now := time.Now()
	c := NewCooldown(8 * time.Second)
	c.now = func() time.Time { return now }

	c.Recent("Jane Doe")
	now = now.Add(9 * time.Second)
	if c.Recent("Jane Doe") {
		t.Fatal("scan after the window should go through")
	}
	if len(c.seen) != 1 {
		t.Fatalf("expired entries should be swept, map has %d entries", len(c.seen))
	}
}

func TestCooldownDisabled(t *testing.T) {
	c := NewCooldown(0)
	if c.Recent("Jane Doe") || c.Recent("Jane Doe") {
		t.Fatal("zero TTL must never suppress")
	}
}

func TestCooldownBound(t *testing.T) {
	now := time.Now()
	c := NewCooldown(time.Hour)
	c.now = func() time.Time { return now }
	c.max = 10

	for i := 0; i < 25; i++ {
		c.Recent(string(rune('a' + i)))
	}
	if len(c.seen) > c.max {
		t.Fatalf("cache grew past its bound: %d > %d", len(c.seen), c.max)
	}
}
