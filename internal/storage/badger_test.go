package storage

import (
	"context"
	"testing"
)

func TestBadgerStoreContractInMemory(t *testing.T) {
	store := NewBadgerStore(BadgerOptions{InMemory: true})
	t.Cleanup(func() {
		_ = store.Close()
	})
	exerciseStore(t, store)
}

func TestBadgerStoreRequiresInit(t *testing.T) {
	requireNotInitialized(t, NewBadgerStore(BadgerOptions{InMemory: true}))
}

func TestBadgerStoreRequiresPath(t *testing.T) {
	store := NewBadgerStore(BadgerOptions{})
	if err := store.Init(context.Background()); err == nil {
		t.Fatal("expected missing path error")
	}
}

func TestBadgerStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store := NewBadgerStore(BadgerOptions{Path: dir, SyncWrites: true})
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.SaveRun(ctx, newRun("persisted", "2026-03-01T00:00:00Z", 2.5)); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := NewBadgerStore(BadgerOptions{Path: dir})
	if err := reopened.Init(ctx); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() {
		_ = reopened.Close()
	})
	run, ok, err := reopened.GetRun(ctx, "persisted")
	if err != nil || !ok {
		t.Fatalf("get run after reopen: ok=%t err=%v", ok, err)
	}
	if run.BestFitness != 2.5 {
		t.Fatalf("unexpected run after reopen: %+v", run)
	}
}
