package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DanielPopoola/consultation-relay/internal/adapters/repo"
	"github.com/DanielPopoola/consultation-relay/internal/adapters/webhook"
	"github.com/DanielPopoola/consultation-relay/internal/config"
	"github.com/DanielPopoola/consultation-relay/internal/core/domain"
	"github.com/DanielPopoola/consultation-relay/internal/core/service"
	"github.com/DanielPopoola/consultation-relay/internal/intl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTranslator(t *testing.T) *intl.Translator {
	t.Helper()
	tr, err := intl.NewTranslator()
	require.NoError(t, err)
	return tr
}

// relay is a fully wired server backed by the in-memory store.
type relay struct {
	server *httptest.Server
	store  *repo.MemoryRequestStore
}

func newRelay(t *testing.T, webhookURL string) *relay {
	t.Helper()
	logger := discardLogger()
	tr := newTranslator(t)

	store := repo.NewMemoryRequestStore()
	client := webhook.NewWebhookClient(config.WebhookConfig{Timeout: 2 * time.Second}, logger)
	dispatch := service.NewDispatchService(store, client, webhookURL, logger)
	query := service.NewConsultationQueryService(store)

	mux := http.NewServeMux()
	NewConsultationHandler(dispatch, query, tr, logger).RegisterRoutes(mux)
	NewPageHandler(tr).RegisterRoutes(mux)

	server := httptest.NewServer(tr.Middleware(mux))
	t.Cleanup(server.Close)

	return &relay{server: server, store: store}
}

func (r *relay) post(t *testing.T, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(r.server.URL+"/api/consultation", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func (r *relay) history(t *testing.T) []map[string]any {
	t.Helper()
	resp, err := http.Get(r.server.URL + "/api/consultation/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded struct {
		Requests []map[string]any `json:"requests"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded.Requests
}

type recordedCall struct {
	Body map[string]any
}

func newWebhookServer(t *testing.T, status int, body string) (*httptest.Server, func() []recordedCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		calls = append(calls, recordedCall{Body: payload})
		mu.Unlock()

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, func() []recordedCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedCall(nil), calls...)
	}
}

func TestScenarioA_SuccessfulDelivery(t *testing.T) {
	hook, calls := newWebhookServer(t, http.StatusOK, `{"ok":true}`)
	r := newRelay(t, hook.URL)

	resp, body := r.post(t, `{"month":"05","year":2025}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Consulta enviada exitosamente", body["message"])
	assert.Equal(t, map[string]any{
		"month":           "05",
		"year":            float64(2025),
		"requestId":       float64(1),
		"webhookResponse": map[string]any{"ok": true},
	}, body["data"])

	recorded := calls()
	require.Len(t, recorded, 1)
	assert.Equal(t, "05", recorded[0].Body["mes"])
	assert.Equal(t, float64(2025), recorded[0].Body["año"])
	assert.Equal(t, float64(1), recorded[0].Body["requestId"])
	ts, ok := recorded[0].Body["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(domain.WebhookTimestampLayout, ts)
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(ts, "Z"))

	history := r.history(t)
	require.Len(t, history, 1)
	assert.Equal(t, "success", history[0]["status"])
}

func TestScenarioB_InvalidMonth(t *testing.T) {
	hook, calls := newWebhookServer(t, http.StatusOK, `{}`)
	r := newRelay(t, hook.URL)

	resp, body := r.post(t, `{"month":"13","year":2025}`)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Datos de entrada inválidos", body["message"])

	issues, ok := body["errors"].([]any)
	require.True(t, ok)
	require.Len(t, issues, 1)
	issue := issues[0].(map[string]any)
	assert.Equal(t, "INVALID_FORMAT", issue["code"])
	assert.Equal(t, []any{"month"}, issue["path"])
	assert.Equal(t, "Mes debe ser entre 01 y 12", issue["message"])

	assert.Empty(t, calls())
	assert.Empty(t, r.history(t))
}

func TestScenarioC_WebhookFailure(t *testing.T) {
	hook, calls := newWebhookServer(t, http.StatusInternalServerError, `oops`)
	r := newRelay(t, hook.URL)

	resp, body := r.post(t, `{"month":"12","year":2099}`)

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Error al enviar datos al webhook", body["message"])
	assert.Contains(t, body["error"], "500")
	assert.Len(t, calls(), 1, "delivery is attempted exactly once")

	history := r.history(t)
	require.Len(t, history, 1)
	assert.Equal(t, "failed", history[0]["status"])
}

func TestScenarioD_WebhookNotConfigured(t *testing.T) {
	r := newRelay(t, "")

	resp, body := r.post(t, `{"month":"01","year":2000}`)

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Webhook URL no configurada. Configure N8N_WEBHOOK_URL en las variables de entorno.", body["message"])

	history := r.history(t)
	require.Len(t, history, 1)
	assert.Equal(t, "pending", history[0]["status"])
}

func TestSubmit_YearAsString(t *testing.T) {
	hook, calls := newWebhookServer(t, http.StatusOK, ``)
	r := newRelay(t, hook.URL)

	resp, body := r.post(t, `{"month":"07","year":"2030"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(2030), data["year"])
	assert.Equal(t, map[string]any{}, data["webhookResponse"])

	recorded := calls()
	require.Len(t, recorded, 1)
	assert.Equal(t, float64(2030), recorded[0].Body["año"])
}

func TestSubmit_ValidationTable(t *testing.T) {
	hook, calls := newWebhookServer(t, http.StatusOK, `{}`)
	r := newRelay(t, hook.URL)

	tests := []struct {
		name      string
		body      string
		wantCodes []string
	}{
		{name: "single digit month", body: `{"month":"5","year":2025}`, wantCodes: []string{"INVALID_FORMAT"}},
		{name: "month zero", body: `{"month":"00","year":2025}`, wantCodes: []string{"INVALID_FORMAT"}},
		{name: "numeric month", body: `{"month":5,"year":2025}`, wantCodes: []string{"INVALID_FORMAT"}},
		{name: "year too low", body: `{"month":"05","year":1999}`, wantCodes: []string{"INVALID_RANGE"}},
		{name: "year too high", body: `{"month":"05","year":2100}`, wantCodes: []string{"INVALID_RANGE"}},
		{name: "fractional year", body: `{"month":"05","year":2025.5}`, wantCodes: []string{"INVALID_RANGE"}},
		{name: "non numeric year", body: `{"month":"05","year":"abc"}`, wantCodes: []string{"INVALID_RANGE"}},
		{name: "both invalid", body: `{"month":"13","year":1800}`, wantCodes: []string{"INVALID_FORMAT", "INVALID_RANGE"}},
		{name: "empty object", body: `{}`, wantCodes: []string{"INVALID_FORMAT", "INVALID_RANGE"}},
		{name: "not json", body: `month=05`, wantCodes: []string{"INVALID_FORMAT", "INVALID_RANGE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := r.post(t, tt.body)

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			issues := body["errors"].([]any)
			var codes []string
			for _, raw := range issues {
				codes = append(codes, raw.(map[string]any)["code"].(string))
			}
			assert.Equal(t, tt.wantCodes, codes)
		})
	}

	assert.Empty(t, calls())
	assert.Empty(t, r.history(t))
}

func TestSubmit_EnglishMessages(t *testing.T) {
	r := newRelay(t, "")

	req, err := http.NewRequest(http.MethodPost, r.server.URL+"/api/consultation", bytes.NewBufferString(`{"month":"13","year":2025}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Invalid input data", body["message"])
}

func TestSubmit_IDsAreUniqueAcrossConcurrentRequests(t *testing.T) {
	hook, _ := newWebhookServer(t, http.StatusOK, `{}`)
	r := newRelay(t, hook.URL)

	const n = 10
	var wg sync.WaitGroup
	ids := make(chan float64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(r.server.URL+"/api/consultation", "application/json", strings.NewReader(`{"month":"03","year":2024}`))
			if err != nil {
				return
			}
			defer resp.Body.Close()
			var body struct {
				Data struct {
					RequestID float64 `json:"requestId"`
				} `json:"data"`
			}
			if json.NewDecoder(resp.Body).Decode(&body) == nil {
				ids <- body.Data.RequestID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[float64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %v", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestGetConsultation(t *testing.T) {
	r := newRelay(t, "")
	_, _ = r.post(t, `{"month":"02","year":2022}`)

	t.Run("found", func(t *testing.T) {
		resp, err := http.Get(r.server.URL + "/api/consultation/1")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body RequestResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, int64(1), body.Request.ID)
		assert.Equal(t, "02", body.Request.Month)
		assert.Equal(t, "pending", body.Request.Status)
	})

	t.Run("not found", func(t *testing.T) {
		resp, err := http.Get(r.server.URL + "/api/consultation/99")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad id", func(t *testing.T) {
		resp, err := http.Get(r.server.URL + "/api/consultation/abc")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

type failingQuery struct{}

func (failingQuery) History(ctx context.Context) ([]*domain.ConsultationRequest, error) {
	return nil, errors.New("connection reset")
}

func (failingQuery) FindByID(ctx context.Context, id int64) (*domain.ConsultationRequest, error) {
	return nil, errors.New("connection reset")
}

func TestHandleHistory_StoreFailure(t *testing.T) {
	h := NewConsultationHandler(nil, failingQuery{}, newTranslator(t), discardLogger())

	rec := httptest.NewRecorder()
	h.HandleHistory(rec, httptest.NewRequest(http.MethodGet, "/api/consultation/history", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Error al obtener historial","error":"connection reset"}`, rec.Body.String())
}

func TestHandleHistory_EmptyIsArray(t *testing.T) {
	r := newRelay(t, "")

	resp, err := http.Get(r.server.URL + "/api/consultation/history")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"requests":[]}`, string(raw))
}

func TestHandleHealth(t *testing.T) {
	tr := newTranslator(t)

	t.Run("healthy", func(t *testing.T) {
		h := NewConsultationHandler(nil, nil, tr, discardLogger()).
			WithHealthCheck("postgres", func(ctx context.Context) error { return nil })

		rec := httptest.NewRecorder()
		h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","store":"postgres"}`, rec.Body.String())
	})

	t.Run("store down", func(t *testing.T) {
		h := NewConsultationHandler(nil, nil, tr, discardLogger()).
			WithHealthCheck("redis", func(ctx context.Context) error { return errors.New("dial tcp: refused") })

		rec := httptest.NewRecorder()
		h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"unavailable","store":"redis","error":"dial tcp: refused"}`, rec.Body.String())
	})
}

func TestPage(t *testing.T) {
	r := newRelay(t, "")

	resp, err := http.Get(r.server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	html := string(raw)
	assert.Contains(t, html, `<option value="01">01 - Enero</option>`)
	assert.Contains(t, html, `<option value="12">12 - Diciembre</option>`)
	assert.Contains(t, html, `value="`+time.Now().Format("2006")+`"`)
	assert.Contains(t, html, `data-default-year="`+time.Now().Format("2006")+`"`)

	static, err := http.Get(r.server.URL + "/static/app.js")
	require.NoError(t, err)
	defer static.Body.Close()
	assert.Equal(t, http.StatusOK, static.StatusCode)

	script, err := io.ReadAll(static.Body)
	require.NoError(t, err)
	assert.Contains(t, string(script), "yearInput.value = msg.defaultYear", "year resets after a successful submit")
}
