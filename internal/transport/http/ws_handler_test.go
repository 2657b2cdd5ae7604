package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"emotion-quiz-service/internal/app"
	"emotion-quiz-service/internal/domain"
	"emotion-quiz-service/internal/exposure"
	"emotion-quiz-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func TestWebSocketTrialFlow(t *testing.T) {
	clock := exposure.NewManualScheduler()
	server := newTestServer(t, clock)

	conn := dial(t, server, "/ws?sessionId=s-1&catalogId=kdef-compound")

	// Expect opened event first.
	payload := readUntil(t, conn, "opened")
	if payload["sessionId"] != "s-1" || payload["catalogId"] != "kdef-compound" {
		t.Fatalf("unexpected opened payload: %v", payload)
	}
	if frame := readUntil(t, conn, "frame"); frame["phase"] != "neutral" {
		t.Fatalf("expected neutral preview, got %v", frame["phase"])
	}

	send(t, conn, "submitAnswer", nil)
	if errPayload := readUntil(t, conn, "error"); errPayload["code"] != "no_trial_in_progress" {
		t.Fatalf("expected no_trial_in_progress, got %v", errPayload)
	}

	send(t, conn, "startTrial", map[string]any{"exposureMs": 100})
	meta := readUntil(t, conn, "trialStarted")
	if meta["subjectId"] == "" || meta["angle"] == "" {
		t.Fatalf("expected trial meta, got %v", meta)
	}

	clock.Advance(500 * time.Millisecond)
	exposed := readFrame(t, conn, "exposed")
	if exposed["progressAnimationMs"] != float64(100) {
		t.Fatalf("expected progress animation over exposure, got %v", exposed["progressAnimationMs"])
	}
	clock.Advance(100 * time.Millisecond)
	readFrame(t, conn, "neutral")

	send(t, conn, "selectEmotion", map[string]any{"emotion": "HA"})
	readUntil(t, conn, "snapshot")
	send(t, conn, "submitAnswer", nil)
	result := readUntil(t, conn, "result")
	tally, ok := result["tally"].(map[string]any)
	if !ok || tally["attempts"] != float64(1) {
		t.Fatalf("expected one attempt in tally, got %v", result["tally"])
	}
}

func TestWebSocketRejectsUnknownMessages(t *testing.T) {
	server := newTestServer(t, exposure.NewManualScheduler())
	conn := dial(t, server, "/ws")
	readUntil(t, conn, "opened")

	send(t, conn, "dance", nil)
	if p := readUntil(t, conn, "error"); p["code"] != "unsupported_message" {
		t.Fatalf("expected unsupported_message, got %v", p)
	}
	send(t, conn, "setDifficulty", map[string]any{"tier": "expert"})
	if p := readUntil(t, conn, "error"); p["code"] != "unknown_tier" {
		t.Fatalf("expected unknown_tier, got %v", p)
	}
	send(t, conn, "selectSubject", map[string]any{"subject": "ZZ99"})
	if p := readUntil(t, conn, "error"); p["code"] != "invalid_subject" {
		t.Fatalf("expected invalid_subject, got %v", p)
	}
}

func TestWebSocketUnknownCatalog(t *testing.T) {
	server := newTestServer(t, exposure.NewManualScheduler())
	conn := dial(t, server, "/ws?catalogId=missing")
	if p := readUntil(t, conn, "error"); p["code"] != "catalog_not_found" {
		t.Fatalf("expected catalog_not_found, got %v", p)
	}
}

func TestCatalogEndpoint(t *testing.T) {
	server := newTestServer(t, exposure.NewManualScheduler())

	resp, err := http.Get(server.URL + "/catalogs/kdef")
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["id"] != "kdef" {
		t.Fatalf("expected kdef catalog, got %v", body["id"])
	}

	missing, err := http.Get(server.URL + "/catalogs/missing")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.StatusCode)
	}
}

func TestWebSocketSharedSessionOutlivesOneConnection(t *testing.T) {
	server, service := newTestServerWithService(t, exposure.NewManualScheduler())

	first := dial(t, server, "/ws?sessionId=shared")
	readUntil(t, first, "opened")
	second := dial(t, server, "/ws?sessionId=shared")
	readUntil(t, second, "opened")

	first.Close()
	time.Sleep(100 * time.Millisecond)

	send(t, second, "snapshot", nil)
	if p := readUntil(t, second, "snapshot"); p["sessionId"] != "shared" {
		t.Fatalf("expected session to survive the other connection, got %v", p)
	}

	second.Close()
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := service.Snapshot(context.Background(), "shared"); errors.Is(err, domain.ErrSessionNotFound) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("session not closed after the last connection left")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSubjectsEndpoint(t *testing.T) {
	server := newTestServer(t, exposure.NewManualScheduler())

	resp, err := http.Get(server.URL + "/catalogs/kdef/subjects?phase=B")
	if err != nil {
		t.Fatalf("get subjects: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var subjects []string
	if err := json.NewDecoder(resp.Body).Decode(&subjects); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(subjects) != 70 || subjects[0] != "BF01" || subjects[35] != "BM01" {
		t.Fatalf("unexpected subjects: %d first=%v", len(subjects), subjects[:1])
	}

	bad, err := http.Get(server.URL + "/catalogs/kdef/subjects?phase=Z")
	if err != nil {
		t.Fatalf("get bad phase: %v", err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown phase, got %d", bad.StatusCode)
	}
}

func TestEnqueueStopsWhenWriterExits(t *testing.T) {
	send := make(chan any, 1)
	writerDone := make(chan struct{})
	if !enqueue(send, writerDone, "first") {
		t.Fatalf("expected first message to be queued")
	}
	close(writerDone)
	// buffer is full and nobody drains it
	if enqueue(send, writerDone, "second") {
		t.Fatalf("expected enqueue to give up once the writer is gone")
	}
}

func newTestServer(t *testing.T, clock *exposure.ManualScheduler) *httptest.Server {
	t.Helper()
	server, _ := newTestServerWithService(t, clock)
	return server
}

func newTestServerWithService(t *testing.T, clock *exposure.ManualScheduler) (*httptest.Server, *app.QuizService) {
	t.Helper()
	store := memory.NewSessionStore()
	catalogs := memory.NewCatalogRepository(memory.NewBuiltinLoader(), time.Minute)
	service := app.NewQuizService(store, catalogs, app.Options{Scheduler: clock, Seed: 1})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(service).ServeWS)
	mux.Handle("/catalogs/", NewCatalogHandler(service))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, service
}

func dial(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// readUntil skips messages of other types.
func readUntil(t *testing.T, conn *websocket.Conn, expect string) map[string]any {
	t.Helper()
	for i := 0; i < 20; i++ {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json waiting for %s: %v", expect, err)
		}
		if msg.Type == expect {
			return msg.Payload
		}
	}
	t.Fatalf("no %s message received", expect)
	return nil
}

func readFrame(t *testing.T, conn *websocket.Conn, phase string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		frame := readUntil(t, conn, "frame")
		if frame["phase"] == phase {
			return frame
		}
	}
	t.Fatalf("no %s frame received", phase)
	return nil
}
