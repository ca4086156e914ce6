package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/matanmalka1/actiongate/internal/domain/action"
	"github.com/matanmalka1/actiongate/internal/domain/journal"
	"github.com/matanmalka1/actiongate/internal/observe"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func markPaidCommand(id int64) *action.Command {
	return &action.Command{
		Key:      "mark_paid",
		UIKey:    "charges:mark_paid:0000000000000001",
		ID:       id,
		Label:    "Mark paid",
		Method:   action.MethodPost,
		Endpoint: "/charges/7/mark-paid",
	}
}

func TestDispatcher_Do(t *testing.T) {
	var gotMethod, gotPath, gotRequestID, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-Id")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"paid"}`))
	}))
	defer server.Close()
	defer http.DefaultTransport.(*http.Transport).CloseIdleConnections()

	d := NewDispatcher(server.URL + "/api/v1")
	result, err := d.Do(context.Background(), markPaidCommand(7))
	if err != nil {
		t.Fatal(err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotPath != "/api/v1/charges/7/mark-paid" {
		t.Errorf("path = %q", gotPath)
	}
	if gotRequestID == "" || gotRequestID != result.RequestID {
		t.Errorf("request id not propagated: header %q, result %q", gotRequestID, result.RequestID)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", result.StatusCode)
	}
	if string(result.Body) != `{"status":"paid"}` {
		t.Errorf("Body = %q", result.Body)
	}
}

func TestDispatcher_SendsJSONPayload(t *testing.T) {
	var gotContentType string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()
	defer http.DefaultTransport.(*http.Transport).CloseIdleConnections()

	cmd := &action.Command{
		Key:      "receive",
		Label:    "Receive binder",
		Method:   action.MethodPost,
		Endpoint: "/binders/receive",
		Payload:  map[string]any{"client_id": int64(4), "binder_number": "B-2026-001"},
	}
	d := NewDispatcher(server.URL)
	result, err := d.Do(context.Background(), cmd)
	if err != nil {
		t.Fatal(err)
	}
	if result.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d", result.StatusCode)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotBody["binder_number"] != "B-2026-001" {
		t.Errorf("body = %+v", gotBody)
	}
}

// A backend rejection is a Result, not an error; the caller decides what a
// 409 means.
func TestDispatcher_NonSuccessStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"already paid"}`, http.StatusConflict)
	}))
	defer server.Close()
	defer http.DefaultTransport.(*http.Transport).CloseIdleConnections()

	d := NewDispatcher(server.URL)
	result, err := d.Do(context.Background(), markPaidCommand(7))
	if err != nil {
		t.Fatalf("non-2xx must not be an error: %v", err)
	}
	if result.StatusCode != http.StatusConflict {
		t.Errorf("StatusCode = %d, want 409", result.StatusCode)
	}
}

func TestDispatcher_InvalidReceivePayloadFailsBeforeNetwork(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()
	defer http.DefaultTransport.(*http.Transport).CloseIdleConnections()

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"nil payload", nil},
		{"missing binder number", map[string]any{"client_id": int64(4)}},
		{"blank binder number", map[string]any{"client_id": int64(4), "binder_number": "   "}},
		{"zero client id", map[string]any{"client_id": int64(0), "binder_number": "B-1"}},
		{"non-numeric client id", map[string]any{"client_id": "four", "binder_number": "B-1"}},
	}

	d := NewDispatcher(server.URL)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &action.Command{
				Key:      "receive",
				Label:    "Receive binder",
				Method:   action.MethodPost,
				Endpoint: "/binders/receive",
				Payload:  tt.payload,
			}
			_, err := d.Do(context.Background(), cmd)
			if !errors.Is(err, ErrInvalidReceivePayload) {
				t.Errorf("err = %v, want ErrInvalidReceivePayload", err)
			}
		})
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("backend was hit %d times; validation must fail before any network call", n)
	}
}

func TestDispatcher_TransportErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	d := NewDispatcher(server.URL)
	if _, err := d.Do(context.Background(), markPaidCommand(7)); err == nil {
		t.Fatal("expected a transport error")
	}
}

type recordingStore struct {
	entries []journal.Entry
}

func (s *recordingStore) Append(_ context.Context, e *journal.Entry) error {
	s.entries = append(s.entries, *e)
	return nil
}
func (s *recordingStore) List(context.Context, int) ([]journal.Entry, error) { return s.entries, nil }
func (s *recordingStore) Prune(context.Context, time.Time) (int64, error)    { return 0, nil }
func (s *recordingStore) Close() error                                       { return nil }

func TestDispatcher_JournalsEveryDispatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()
	defer http.DefaultTransport.(*http.Transport).CloseIdleConnections()

	store := &recordingStore{}
	d := NewDispatcher(server.URL, WithJournal(store))
	result, err := d.Do(context.Background(), markPaidCommand(7))
	if err != nil {
		t.Fatal(err)
	}

	if len(store.entries) != 1 {
		t.Fatalf("journal has %d entries, want 1", len(store.entries))
	}
	e := store.entries[0]
	if e.RequestID != result.RequestID {
		t.Errorf("journal request id = %q, want %q", e.RequestID, result.RequestID)
	}
	if e.CommandKey != "mark_paid" || e.StatusCode != http.StatusForbidden {
		t.Errorf("journal entry = %+v", e)
	}
	if e.Error != "" {
		t.Errorf("a delivered non-2xx response is not a journal error: %q", e.Error)
	}
}

func TestDispatcher_TracesDispatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()
	defer http.DefaultTransport.(*http.Transport).CloseIdleConnections()

	var spans bytes.Buffer
	tp, err := observe.NewStdoutTracerProvider(&spans)
	if err != nil {
		t.Fatal(err)
	}

	d := NewDispatcher(server.URL, WithTracerProvider(tp))
	if _, err := d.Do(context.Background(), markPaidCommand(7)); err != nil {
		t.Fatal(err)
	}
	if err := observe.Shutdown(context.Background(), tp); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(spans.String(), "actiongate.dispatch") {
		t.Error("dispatch span not exported")
	}
	if !strings.Contains(spans.String(), "mark_paid") {
		t.Error("span missing the action key attribute")
	}
}

func TestDispatcher_JournalsTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	store := &recordingStore{}
	d := NewDispatcher(server.URL, WithJournal(store))
	if _, err := d.Do(context.Background(), markPaidCommand(7)); err == nil {
		t.Fatal("expected a transport error")
	}

	if len(store.entries) != 1 {
		t.Fatalf("journal has %d entries, want 1", len(store.entries))
	}
	if store.entries[0].Error == "" || store.entries[0].StatusCode != 0 {
		t.Errorf("journal entry = %+v, want recorded error with status 0", store.entries[0])
	}
}
