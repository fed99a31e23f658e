package cache

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestPutGet(t *testing.T) {
	c := NewMemory()

	want := json.RawMessage(`{"summary":{"totalResponses":3}}`)
	c.Put("analytics_dashboard_2026-08-31", want, time.Hour)

	got, ok := c.Get("analytics_dashboard_2026-08-31")
	if !ok {
		t.Fatal("key not found after Put")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestGetMissing(t *testing.T) {
	c := NewMemory()

	if _, ok := c.Get("nope"); ok {
		t.Error("unexpected hit for missing key")
	}
}

func TestExpiration(t *testing.T) {
	c := NewMemory()

	c.Put("short", json.RawMessage(`1`), 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("expired key still readable")
	}
}

func TestDelete(t *testing.T) {
	c := NewMemory()

	c.Put("k", json.RawMessage(`1`), time.Hour)
	c.Delete("k")

	if _, ok := c.Get("k"); ok {
		t.Error("deleted key still readable")
	}
}

func TestOverwrite(t *testing.T) {
	c := NewMemory()

	c.Put("k", json.RawMessage(`"old"`), time.Hour)
	c.Put("k", json.RawMessage(`"new"`), time.Hour)

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("key not found")
	}
	if string(got) != `"new"` {
		t.Errorf("got %s, want \"new\"", got)
	}
}
