package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/totegamma/solr-feeder"
	"github.com/totegamma/solr-feeder/internal/domain"
	"github.com/totegamma/solr-feeder/internal/service"
	"github.com/totegamma/solr-feeder/internal/usecase"
)

// --- mocks ---

type mockNameRequestRepo struct {
	records []domain.SourceRecord
	lookups int
}

func (m *mockNameRequestRepo) FindByRequestNumber(ctx context.Context, nameRequestNumber string) ([]domain.SourceRecord, error) {
	m.lookups++
	return m.records, nil
}

type mockIndexGateway struct {
	cores []string
	err   error
}

func (m *mockIndexGateway) Update(ctx context.Context, core string, document domain.Document) error {
	m.cores = append(m.cores, core)
	return m.err
}

type mockEventSource struct {
	events []feeder.SyncEvent
}

func (m *mockEventSource) Realtime(ctx context.Context, input <-chan []string, output chan<- feeder.SyncEvent) {
	var filter []string
	select {
	case filter = <-input:
	case <-ctx.Done():
		return
	}
	for _, event := range m.events {
		if len(filter) > 0 && event.NameRequestNumber != filter[0] {
			continue
		}
		select {
		case output <- event:
		case <-ctx.Done():
			return
		}
	}
	<-ctx.Done()
}

func strPtr(s string) *string { return &s }
func intPtr(i int64) *int64   { return &i }

func approvedRecord(choice int64) domain.SourceRecord {
	return domain.SourceRecord{
		NameRequestNumber: strPtr("NR1234567"),
		ChoiceNumber:      intPtr(choice),
		Name:              strPtr("ACME"),
		NameStateCode:     strPtr(domain.NameStateApproved),
	}
}

func newTestServer(repo *mockNameRequestRepo, gw *mockIndexGateway, lock service.KeyLock, events EventSource, checks ...HealthCheck) *echo.Echo {
	uc := usecase.NewNamesUsecase(repo, gw, nil, usecase.Cores{})
	h := NewHandler(uc, lock, events, checks...)

	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func postNames(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feeds/names", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)
	return res
}

func decodeMessage(t *testing.T, res *httptest.ResponseRecorder) string {
	t.Helper()
	var body feeder.MessageResponse
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body %q: %v", res.Body.String(), err)
	}
	return body.Message
}

// --- tests ---

func TestHandleNamesSuccess(t *testing.T) {
	repo := &mockNameRequestRepo{records: []domain.SourceRecord{approvedRecord(1)}}
	gw := &mockIndexGateway{}
	e := newTestServer(repo, gw, nil, nil)

	res := postNames(e, `{"nameRequestNumber":"NR1234567"}`)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if msg := decodeMessage(t, res); msg != "Solr cores updated" {
		t.Fatalf("unexpected message %q", msg)
	}
	if len(gw.cores) != 2 || gw.cores[0] != "names" || gw.cores[1] != "possible.conflicts" {
		t.Fatalf("unexpected updates %v", gw.cores)
	}
}

func TestHandleNamesBadRequest(t *testing.T) {
	bodies := []string{
		``,
		`not json`,
		`[]`,
		`null`,
		`{}`,
		`{"nameRequestNumber":null}`,
		`{"nameRequestNumber":1234567}`,
		`{"nameRequestNumber":""}`,
		`{"other":"NR1234567"}`,
	}

	for _, body := range bodies {
		repo := &mockNameRequestRepo{}
		gw := &mockIndexGateway{}
		e := newTestServer(repo, gw, nil, nil)

		res := postNames(e, body)

		if res.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400 got %d", body, res.Code)
			continue
		}
		if msg := decodeMessage(t, res); msg != `Required parameter "nameRequestNumber" not defined` {
			t.Errorf("body %q: unexpected message %q", body, msg)
		}
		if repo.lookups != 0 || len(gw.cores) != 0 {
			t.Errorf("body %q: expected no lookups or updates", body)
		}
	}
}

func TestHandleNamesNotFound(t *testing.T) {
	repo := &mockNameRequestRepo{}
	gw := &mockIndexGateway{}
	e := newTestServer(repo, gw, nil, nil)

	res := postNames(e, `{"nameRequestNumber":"XX0000000"}`)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", res.Code)
	}
	if msg := decodeMessage(t, res); msg != `Unknown "nameRequestNumber" of "XX0000000"` {
		t.Fatalf("unexpected message %q", msg)
	}
	if len(gw.cores) != 0 {
		t.Fatalf("expected no updates got %v", gw.cores)
	}
}

func TestHandleNamesIndexFailure(t *testing.T) {
	repo := &mockNameRequestRepo{records: []domain.SourceRecord{approvedRecord(1), approvedRecord(2)}}
	gw := &mockIndexGateway{err: domain.IndexUpdateError{Core: "names", StatusCode: http.StatusBadGateway, Message: "solr is sad"}}
	e := newTestServer(repo, gw, nil, nil)

	res := postNames(e, `{"nameRequestNumber":"NR1234567"}`)

	if res.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", res.Code)
	}
	if msg := decodeMessage(t, res); msg != "solr is sad" {
		t.Fatalf("unexpected message %q", msg)
	}
	if len(gw.cores) != 1 {
		t.Fatalf("expected fail fast after one update got %v", gw.cores)
	}
}

func TestHandleNamesKeyBusy(t *testing.T) {
	lock := service.NewLocalKeyLock(time.Minute)
	if ok, _ := lock.Acquire(context.Background(), "NR1234567"); !ok {
		t.Fatalf("expected to acquire lock")
	}

	repo := &mockNameRequestRepo{records: []domain.SourceRecord{approvedRecord(1)}}
	gw := &mockIndexGateway{}
	e := newTestServer(repo, gw, lock, nil)

	res := postNames(e, `{"nameRequestNumber":"NR1234567"}`)
	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", res.Code)
	}
	if msg := decodeMessage(t, res); msg != `Sync of "nameRequestNumber" of "NR1234567" already in progress` {
		t.Fatalf("unexpected message %q", msg)
	}
	if repo.lookups != 0 {
		t.Fatalf("expected no lookup while key is busy")
	}

	lock.Release(context.Background(), "NR1234567")
	res = postNames(e, `{"nameRequestNumber":"NR1234567"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 after release got %d", res.Code)
	}

	// the handler released its own lock
	if ok, _ := lock.Acquire(context.Background(), "NR1234567"); !ok {
		t.Fatalf("expected handler to release the key")
	}
}

func TestHandleCorporations(t *testing.T) {
	e := newTestServer(&mockNameRequestRepo{}, &mockIndexGateway{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/feeds/corporations", strings.NewReader(`{"corpNum":"BC0000001"}`))
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if msg := decodeMessage(t, res); msg != "Okie dokie" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestHandleHealth(t *testing.T) {
	healthy := HealthCheck{Name: "postgres", Check: func(ctx context.Context) error { return nil }}
	broken := HealthCheck{Name: "solr", Check: func(ctx context.Context) error { return errors.New("connection refused") }}

	e := newTestServer(&mockNameRequestRepo{}, &mockIndexGateway{}, nil, nil, healthy)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	e = newTestServer(&mockNameRequestRepo{}, &mockIndexGateway{}, nil, nil, healthy, broken)
	res = httptest.NewRecorder()
	e.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "solr: connection refused") {
		t.Fatalf("unexpected body %s", res.Body.String())
	}
}

func TestRealtimeDisabledWithoutEventSource(t *testing.T) {
	e := newTestServer(&mockNameRequestRepo{}, &mockIndexGateway{}, nil, nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/realtime", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", res.Code)
	}
}

func TestHandleRealtime(t *testing.T) {
	events := &mockEventSource{events: []feeder.SyncEvent{
		{NameRequestNumber: "NR0000001", Status: feeder.SyncStatusFailed},
		{NameRequestNumber: "NR1234567", Status: feeder.SyncStatusSucceeded, StatusCode: http.StatusOK},
	}}
	e := newTestServer(&mockNameRequestRepo{}, &mockIndexGateway{}, nil, events)

	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/realtime"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer ws.Close()

	if err := ws.WriteJSON(Request{Type: "listen", NameRequestNumbers: []string{"NR1234567"}}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got feeder.SyncEvent
	if err := ws.ReadJSON(&got); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.NameRequestNumber != "NR1234567" || got.Status != feeder.SyncStatusSucceeded {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestParseNameRequestNumber(t *testing.T) {
	key, ok := parseNameRequestNumber([]byte(`{"nameRequestNumber":"NR1234567","extra":true}`))
	if !ok || key != "NR1234567" {
		t.Fatalf("expected NR1234567 got %q %v", key, ok)
	}

	key, ok = parseNameRequestNumber([]byte(`{"nameRequestNumber":""}`))
	if !ok || key != "" {
		t.Fatalf("expected empty key to parse so validation can reject it, got %q %v", key, ok)
	}
}
