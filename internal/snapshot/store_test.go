package snapshot

import (
	"context"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	raw, err := m.Load(ctx, KeyPlayer)
	if err != nil {
		t.Fatalf("load absent: %v", err)
	}
	if raw != nil {
		t.Fatalf("absent key returned %q", raw)
	}

	if err := m.Save(ctx, KeyPlayer, []byte(`{"name":"Asha"}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := m.Load(ctx, KeyPlayer)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"name":"Asha"}` {
		t.Fatalf("loaded %q", got)
	}

	if err := m.Delete(ctx, KeyPlayer); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = m.Load(ctx, KeyPlayer)
	if err != nil || got != nil {
		t.Fatalf("after delete: raw=%q err=%v", got, err)
	}
}

func TestMemoryCopiesData(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	in := []byte("original")
	if err := m.Save(ctx, KeyMarket, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	in[0] = 'X'

	out, err := m.Load(ctx, KeyMarket)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(out) != "original" {
		t.Fatalf("stored data aliased caller buffer: %q", out)
	}
	out[0] = 'Y'

	again, _ := m.Load(ctx, KeyMarket)
	if string(again) != "original" {
		t.Fatalf("returned data aliased store buffer: %q", again)
	}
}

func TestMemoryDeleteUnknownKey(t *testing.T) {
	m := NewMemory()
	if err := m.Delete(context.Background(), "nope"); err != nil {
		t.Fatalf("delete unknown: %v", err)
	}
}
