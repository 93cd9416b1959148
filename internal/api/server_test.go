package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/vertrag/internal/api/middleware"
	"github.com/darmiel/vertrag/internal/api/presenter"
	"github.com/darmiel/vertrag/internal/audit"
	"github.com/darmiel/vertrag/internal/catalog"
	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/metrics"
	"github.com/darmiel/vertrag/internal/service"
	"github.com/darmiel/vertrag/internal/store"
	"github.com/darmiel/vertrag/internal/tasks"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	manager, err := catalog.NewManager(catalog.LoadDefault)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	svc := service.New(
		"provider-automotors-oem",
		manager,
		store.NewInMemoryRegistry(),
		audit.NewInMemoryAuditor(100),
		metrics.New(reg),
	)
	srv := httptest.NewServer(NewServer(svc, reg).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, body any, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)
	resp := doJSON(t, srv, http.MethodGet, HealthCheckRoute, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.CorrelationIDHeader))
}

func TestServer_NegotiationAndTransfer(t *testing.T) {
	srv := newTestServer(t)

	var n core.Negotiation
	resp := doJSON(t, srv, http.MethodPost, NegotiationsRoute, service.CreateNegotiationRequest{
		ConsumerID: "consumer-tierone-supplier",
		AssetID:    "part-catalog-2024",
		Attributes: core.AttributeSet{"partner_type": core.StringValue("tier1_supplier")},
	}, &n)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, core.NegotiationRequested, n.State)

	for _, action := range []string{"requestOffer", "agree", "verify", "finalize"} {
		var res service.NegotiationResult
		resp := doJSON(t, srv, http.MethodPost, NegotiationsRoute+"/"+n.ID+"/"+action, nil, &res)
		require.Equal(t, http.StatusOK, resp.StatusCode, action)
		n = *res.Negotiation
	}
	require.Equal(t, core.NegotiationFinalized, n.State)
	require.NotNil(t, n.Agreement)

	var tr core.Transfer
	resp = doJSON(t, srv, http.MethodPost, TransfersRoute, service.CreateTransferRequest{
		AgreementID: n.Agreement.ID,
	}, &tr)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// data is not available before completion
	var errResp presenter.ErrorResponse
	resp = doJSON(t, srv, http.MethodGet, TransfersRoute+"/"+tr.ID+"/data", nil, &errResp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, core.CodeInvalidState, errResp.Code)

	for _, action := range []string{"start", "complete"} {
		resp := doJSON(t, srv, http.MethodPost, TransfersRoute+"/"+tr.ID+"/"+action, nil, &tr)
		require.Equal(t, http.StatusOK, resp.StatusCode, action)
	}
	assert.Equal(t, core.TransferCompleted, tr.State)

	resp = doJSON(t, srv, http.MethodGet, TransfersRoute+"/"+tr.ID+"/data", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	var agreements []core.Agreement
	doJSON(t, srv, http.MethodGet, AgreementsRoute, nil, &agreements)
	assert.Len(t, agreements, 1)
}

func TestServer_ErrorCodes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown negotiation", http.MethodGet, NegotiationsRoute + "/nope", nil, http.StatusNotFound, core.CodeNotFound},
		{"unknown asset", http.MethodGet, CatalogRoute + "/nope", nil, http.StatusNotFound, core.CodeNotFound},
		{"unknown action", http.MethodPost, NegotiationsRoute + "/nope/dance", nil, http.StatusBadRequest, core.CodeBadRequest},
		{"unknown agreement", http.MethodPost, TransfersRoute, service.CreateTransferRequest{AgreementID: "nope"},
			http.StatusNotFound, core.CodeNotFound},
		{"missing asset", http.MethodPost, NegotiationsRoute, service.CreateNegotiationRequest{ConsumerID: "c"},
			http.StatusBadRequest, core.CodeBadRequest},
		{"invalid policy", http.MethodPost, ExplainRoute, map[string]any{
			"policy": map[string]any{
				"id": "broken",
				"permissions": []any{map[string]any{
					"action": "USE",
					"constraints": []any{map[string]any{
						"leftOperand": "region", "operator": "in", "rightOperand": "EU",
					}},
				}},
			},
		}, http.StatusUnprocessableEntity, core.CodeInvalidPolicy},
		{"unknown route", http.MethodGet, "/v2/nothing", nil, http.StatusNotFound, core.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp presenter.ErrorResponse
			resp := doJSON(t, srv, tt.method, tt.path, tt.body, &errResp)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, errResp.Code)
			assert.NotEmpty(t, errResp.CorrelationID)
		})
	}
}

func TestServer_InvalidTransitionIsConflict(t *testing.T) {
	srv := newTestServer(t)

	var n core.Negotiation
	doJSON(t, srv, http.MethodPost, NegotiationsRoute, service.CreateNegotiationRequest{
		ConsumerID: "consumer-tierone-supplier",
		AssetID:    "part-catalog-2024",
	}, &n)

	var errResp presenter.ErrorResponse
	resp := doJSON(t, srv, http.MethodPost, NegotiationsRoute+"/"+n.ID+"/finalize", nil, &errResp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, core.CodeInvalidTransition, errResp.Code)
}

func TestServer_CorrelationIDIsAudited(t *testing.T) {
	srv := newTestServer(t)

	body, err := json.Marshal(service.CreateNegotiationRequest{
		ConsumerID: "consumer-tierone-supplier",
		AssetID:    "quality-metrics-q4",
	})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, srv.URL+NegotiationsRoute, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(middleware.CorrelationIDHeader, "corr-123")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "corr-123", resp.Header.Get(middleware.CorrelationIDHeader))

	var entries []core.AuditEntry
	doJSON(t, srv, http.MethodGet, AuditRoute+"?correlation_id=corr-123", nil, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "negotiation.create", entries[0].Action)
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, ResetRoute, nil, nil)

	resp := doJSON(t, srv, http.MethodGet, MetricsRoute, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "vertrag_registry_resets_total 1"))
}

func TestServer_Tasks(t *testing.T) {
	manager, err := catalog.NewManager(catalog.LoadDefault)
	require.NoError(t, err)
	svc := service.New("provider-automotors-oem", manager, store.NewInMemoryRegistry(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	tm := tasks.NewManager(ctx)
	tm.Register("catalog-reload", 0, func(ctx context.Context, logger zerolog.Logger) error {
		res, err := svc.ReloadCatalog(ctx)
		if err != nil {
			return err
		}
		logger.Info().Int("assets", res.Assets).Msg("catalog reloaded")
		return nil
	})

	srv := httptest.NewServer(NewServer(svc, nil, WithTasks(tm)).Routes())
	t.Cleanup(srv.Close)

	var triggered TriggerTaskResponse
	resp := doJSON(t, srv, http.MethodPost, TasksRoute+"/catalog-reload/trigger", nil, &triggered)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "triggered", triggered.Status)
	tm.Wait()

	var status []tasks.TaskStatus
	doJSON(t, srv, http.MethodGet, TasksRoute, nil, &status)
	require.Len(t, status, 1)
	assert.Equal(t, 1, status[0].Runs)
	assert.Equal(t, "success", status[0].LastResult)

	var logs []tasks.LogEntry
	resp = doJSON(t, srv, http.MethodGet, TasksRoute+"/catalog-reload/logs", nil, &logs)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, logs)

	var errResp presenter.ErrorResponse
	resp = doJSON(t, srv, http.MethodPost, TasksRoute+"/missing/trigger", nil, &errResp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, core.CodeNotFound, errResp.Code)
}
