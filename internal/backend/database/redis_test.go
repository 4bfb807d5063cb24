package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisDB(t *testing.T) (DatabaseService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	ds, err := NewRedisDatabase(mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisDatabase error: %v", err)
	}
	if err := ds.CreateDatabase(); err != nil {
		t.Fatalf("CreateDatabase error: %v", err)
	}
	t.Cleanup(func() { _ = ds.Close() })
	return ds, mr
}

func TestRedis_DoesDatabaseExist(t *testing.T) {
	ds, _ := newTestRedisDB(t)
	if !ds.DoesDatabaseExist() {
		t.Fatalf("expected DoesDatabaseExist to return true")
	}
}

func TestRedis_AppendAndGetEntries(t *testing.T) {
	ds, mr := newTestRedisDB(t)
	ctx := context.Background()

	empty, err := ds.GetEntries(ctx, "spots")
	if err != nil {
		t.Fatalf("GetEntries error: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}

	if err := ds.AppendEntry(ctx, "spots", Entry{Title: "Beach", Image: "/uploads/1.png"}); err != nil {
		t.Fatalf("AppendEntry #1 error: %v", err)
	}
	if err := ds.AppendEntry(ctx, "spots", Entry{Title: "Harbour"}); err != nil {
		t.Fatalf("AppendEntry #2 error: %v", err)
	}

	records, err := ds.GetEntries(ctx, "spots")
	if err != nil {
		t.Fatalf("GetEntries error: %v", err)
	}
	entries := decodeEntries(t, records)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "Beach" || entries[0].Image != "/uploads/1.png" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Title != "Harbour" || entries[1].Image != "" {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}

	stored, err := mr.List("foodspots:spots")
	if err != nil {
		t.Fatalf("miniredis List error: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 raw list items, got %d", len(stored))
	}
}

func TestRedis_GetEntries_SkipsUndecodable(t *testing.T) {
	ds, mr := newTestRedisDB(t)

	if _, err := mr.Push("foodspots:food", `{"title":"Ramen","image":""}`, "not json", `{"title":"Soba","image":""}`); err != nil {
		t.Fatalf("miniredis Push error: %v", err)
	}

	records, err := ds.GetEntries(context.Background(), "food")
	if err != nil {
		t.Fatalf("GetEntries error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 decodable entries, got %d", len(records))
	}
	entries := decodeEntries(t, records)
	if entries[0].Title != "Ramen" || entries[1].Title != "Soba" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestNewRedisDatabase_InvalidURL(t *testing.T) {
	if _, err := NewRedisDatabase("http://localhost:6379"); err == nil {
		t.Fatalf("expected error for invalid redis URL")
	}
}
