package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/vibeflow/vibeflow/adapters"
	"github.com/vibeflow/vibeflow/domain/entities"
	"github.com/vibeflow/vibeflow/domain/repositories"
)

func TestSettingsDefaults(t *testing.T) {
	svc := NewSettingsService(adapters.NewMemoryStore(), zaptest.NewLogger(t))

	got, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != entities.DefaultSettings() {
		t.Errorf("Expected defaults, got %+v", got)
	}
	if !got.SoundEnabled || got.OutputLanguage != entities.LanguageEnglish {
		t.Errorf("Sound defaults on and language to English, got %+v", got)
	}
}

func TestSettingsSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := adapters.NewMemoryStore()
	svc := NewSettingsService(store, zaptest.NewLogger(t))

	want := entities.Settings{APIKey: "AIza-test", OutputLanguage: entities.LanguageSpanish, ClarifyText: true, SoundEnabled: false}
	if err := svc.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if v, _ := store.Get(ctx, KeySound); v != "false" {
		t.Errorf("Expected sound stored as false, got %q", v)
	}
	if v, _ := store.Get(ctx, KeyLanguage); v != "es" {
		t.Errorf("Expected language es, got %q", v)
	}

	got, err := NewSettingsService(store, zaptest.NewLogger(t)).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	want.APIKey = "  "
	if err := svc.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.Get(ctx, KeyAPIKey); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected blank key to be removed, got %v", err)
	}
}

func TestSettingsToleratesGarbage(t *testing.T) {
	ctx := context.Background()
	store := adapters.NewMemoryStore()
	_ = store.Set(ctx, KeySound, "maybe")
	_ = store.Set(ctx, KeyLanguage, "de")
	_ = store.Set(ctx, KeyClarify, "yes")

	got, err := NewSettingsService(store, zaptest.NewLogger(t)).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.SoundEnabled || got.OutputLanguage != entities.LanguageEnglish || got.ClarifyText {
		t.Errorf("Expected defaults for unreadable values, got %+v", got)
	}
}

func TestHistoryNewestFirstAndCapped(t *testing.T) {
	ctx := context.Background()
	svc := NewHistoryService(adapters.NewMemoryStore(), zaptest.NewLogger(t))

	base := time.UnixMilli(1_700_000_000_000)
	for i := 0; i < MaxHistoryItems+5; i++ {
		at := base.Add(time.Duration(i) * time.Second)
		svc.now = func() time.Time { return at }
		if _, err := svc.Add(ctx, fmt.Sprintf("result %d", i), entities.ModeText); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	items, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != MaxHistoryItems {
		t.Fatalf("Expected %d items, got %d", MaxHistoryItems, len(items))
	}
	if items[0].Result != fmt.Sprintf("result %d", MaxHistoryItems+4) {
		t.Errorf("Expected newest first, got %q", items[0].Result)
	}
	if items[len(items)-1].Result != "result 5" {
		t.Errorf("Expected the 5 oldest to be dropped, got %q", items[len(items)-1].Result)
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].Timestamp < items[i].Timestamp {
			t.Fatal("Items must be ordered newest first")
		}
	}
}

func TestHistoryClearRemovesKey(t *testing.T) {
	ctx := context.Background()
	store := adapters.NewMemoryStore()
	svc := NewHistoryService(store, zaptest.NewLogger(t))

	_, _ = svc.Add(ctx, "hello", entities.ModeEmail)
	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := store.Get(ctx, KeyHistory); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected persisted history to be removed, got %v", err)
	}
	items, _ := svc.List(ctx)
	if len(items) != 0 {
		t.Errorf("Expected empty history, got %d", len(items))
	}
}

func TestHistoryMalformedIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := adapters.NewMemoryStore()
	_ = store.Set(ctx, KeyHistory, "{not json")
	svc := NewHistoryService(store, zaptest.NewLogger(t))

	items, err := svc.List(ctx)
	if err != nil || len(items) != 0 {
		t.Errorf("Expected empty history, got %v, %v", items, err)
	}

	if _, err := svc.Add(ctx, "fresh", entities.ModeText); err != nil {
		t.Fatalf("Add: %v", err)
	}
	items, _ = svc.List(ctx)
	if len(items) != 1 || items[0].Result != "fresh" {
		t.Errorf("Expected the malformed copy to be replaced, got %+v", items)
	}
}

func TestHistoryRejectsEmptyResult(t *testing.T) {
	svc := NewHistoryService(adapters.NewMemoryStore(), zaptest.NewLogger(t))
	if _, err := svc.Add(context.Background(), "   ", entities.ModeText); err == nil {
		t.Error("Expected empty results to be rejected")
	}
}
