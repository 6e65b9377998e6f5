package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/astralremix/api/internal/model"
)

// completedItem adds a queue item and drives it to completed.
func completedItem(t *testing.T, ta *testApp, url string) string {
	t.Helper()
	ctx := context.Background()
	item, err := ta.queue.Add(ctx, url, model.SourceVideo)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := ta.queue.MarkProcessing(ctx, item.ID); err != nil {
		t.Fatalf("processing: %v", err)
	}
	var pack model.ContentPack
	if err := json.Unmarshal([]byte(packJSON), &pack); err != nil {
		t.Fatalf("pack: %v", err)
	}
	if err := ta.queue.Complete(ctx, item.ID, &pack); err != nil {
		t.Fatalf("complete: %v", err)
	}
	return item.ID
}

func TestQueue_ListAndGet(t *testing.T) {
	ta := setupApp(t)
	id := completedItem(t, ta, "https://x.com/a")
	if _, err := ta.queue.Add(context.Background(), "https://x.com/b", model.SourceVideo); err != nil {
		t.Fatalf("add: %v", err)
	}

	resp := mustAuthRequest(t, ta.app, http.MethodGet, "/api/queue", "")
	assertStatus(t, resp, http.StatusOK)
	if items := parseJSONArray(t, resp); len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}

	resp = mustAuthRequest(t, ta.app, http.MethodGet, "/api/queue?status=pending", "")
	assertStatus(t, resp, http.StatusOK)
	pending := parseJSONArray(t, resp)
	if len(pending) != 1 || pending[0]["url"] != "https://x.com/b" {
		t.Errorf("unexpected pending filter result: %v", pending)
	}

	resp = mustAuthRequest(t, ta.app, http.MethodGet, "/api/queue/"+id, "")
	assertStatus(t, resp, http.StatusOK)
	item := parseJSON(t, resp)
	if item["status"] != "completed" {
		t.Errorf("expected completed, got %v", item["status"])
	}
	if item["contentPack"] == nil {
		t.Error("expected contentPack on completed item")
	}
}

func TestQueue_InvalidStatusFilter(t *testing.T) {
	ta := setupApp(t)

	resp := mustAuthRequest(t, ta.app, http.MethodGet, "/api/queue?status=done", "")
	assertStatus(t, resp, http.StatusBadRequest)
	if code := errorCode(parseJSON(t, resp)); code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %q", code)
	}
}

func TestQueue_GetNotFound(t *testing.T) {
	ta := setupApp(t)

	resp := mustAuthRequest(t, ta.app, http.MethodGet, "/api/queue/missing", "")
	assertStatus(t, resp, http.StatusNotFound)
}

func TestQueue_Stats(t *testing.T) {
	ta := setupApp(t)
	completedItem(t, ta, "https://x.com/a")
	if _, err := ta.queue.Add(context.Background(), "https://x.com/b", model.SourceVideo); err != nil {
		t.Fatalf("add: %v", err)
	}

	resp := mustAuthRequest(t, ta.app, http.MethodGet, "/api/queue/stats", "")
	assertStatus(t, resp, http.StatusOK)

	stats := parseJSON(t, resp)
	if stats["total"] != float64(2) || stats["completed"] != float64(1) || stats["pending"] != float64(1) {
		t.Errorf("unexpected stats: %v", stats)
	}
}

func TestQueue_ScheduleAndList(t *testing.T) {
	ta := setupApp(t)
	id := completedItem(t, ta, "https://x.com/a")

	at := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	resp := mustAuthRequest(t, ta.app, http.MethodPost, "/api/queue/"+id+"/schedule", `{"scheduledFor": "`+at+`"}`)
	assertStatus(t, resp, http.StatusOK)

	item := parseJSON(t, resp)
	if item["status"] != "scheduled" {
		t.Errorf("expected scheduled, got %v", item["status"])
	}
	if item["platform"] != "linkedin" {
		t.Errorf("expected default platform linkedin, got %v", item["platform"])
	}
	if item["contentPack"] == nil {
		t.Error("expected scheduled item to keep its contentPack")
	}

	resp = mustAuthRequest(t, ta.app, http.MethodGet, "/api/queue/scheduled", "")
	assertStatus(t, resp, http.StatusOK)
	if got := parseJSONArray(t, resp); len(got) != 1 {
		t.Errorf("expected 1 scheduled item, got %d", len(got))
	}
}

func TestQueue_SchedulePendingConflict(t *testing.T) {
	ta := setupApp(t)
	item, err := ta.queue.Add(context.Background(), "https://x.com/a", model.SourceVideo)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	at := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	resp := mustAuthRequest(t, ta.app, http.MethodPost, "/api/queue/"+item.ID+"/schedule", `{"scheduledFor": "`+at+`"}`)
	assertStatus(t, resp, http.StatusConflict)
}

func TestQueue_ScheduleValidation(t *testing.T) {
	ta := setupApp(t)
	id := completedItem(t, ta, "https://x.com/a")

	resp := mustAuthRequest(t, ta.app, http.MethodPost, "/api/queue/"+id+"/schedule",
		`{"scheduledFor": "2030-01-01T00:00:00Z", "platform": "myspace"}`)
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestQueue_Delete(t *testing.T) {
	ta := setupApp(t)
	id := completedItem(t, ta, "https://x.com/a")

	resp := mustAuthRequest(t, ta.app, http.MethodDelete, "/api/queue/"+id, "")
	assertStatus(t, resp, http.StatusNoContent)

	resp = mustAuthRequest(t, ta.app, http.MethodDelete, "/api/queue/"+id, "")
	assertStatus(t, resp, http.StatusNotFound)
}
