package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-breakdown/internal/breakdown"
	"github.com/ahrav/go-breakdown/internal/configuration"
	"github.com/ahrav/go-breakdown/internal/domain"
)

func newTestServer(t *testing.T, mutate func(*configuration.HTTPConfig)) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := configuration.DefaultConfig().HTTP
	if mutate != nil {
		mutate(&cfg)
	}
	return NewServer(
		breakdown.NewAssembler(breakdown.WithLogger(logger)),
		logger,
		cfg,
		Defaults{Scale: domain.DefaultScale, Rules: configuration.DefaultRules()},
	)
}

func tableBody(rows ...domain.Row) domain.Table {
	return domain.Table{
		Columns: []domain.Column{
			{Name: "Id", Type: domain.ColumnText},
			{Name: "Feature_A", Type: domain.ColumnText},
			{Name: "Feature_B", Type: domain.ColumnText},
			{Name: "N", Type: domain.ColumnInteger},
		},
		Rows: rows,
	}
}

func defaultTable() domain.Table {
	return tableBody(
		domain.Row{"Id": "1", "Feature_A": "X", "Feature_B": "p", "N": "1"},
		domain.Row{"Id": "2", "Feature_A": "Y", "Feature_B": "p", "N": "1"},
		domain.Row{"Id": "3", "Feature_A": "Z", "Feature_B": "q", "N": "1"},
	)
}

func post(t *testing.T, s *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	switch b := body.(type) {
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/breakdowns", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateBreakdown(t *testing.T) {
	s := newTestServer(t, nil)

	rec := post(t, s, BreakdownRequestBody{Table: defaultTable()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp BreakdownResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Rows, 5)
	assert.Equal(t, ResultRowBody{
		FeatureName: "Feature_A", FeatureValue: "X", Total: 1,
		Percentage: "0.334", Value: 0.334, Units: 334, Scale: 1000,
	}, resp.Rows[0])
	assert.Equal(t, "0.333", resp.Rows[2].Percentage)
	assert.Equal(t, "Feature_B", resp.Rows[3].FeatureName)
	assert.Equal(t, "0.667", resp.Rows[3].Percentage)
	assert.Equal(t, int64(2), resp.Rows[3].Total)
	assert.Equal(t, 3, resp.Summaries["Feature_A"].Cardinality)
}

func TestCreateBreakdown_RequestOverrides(t *testing.T) {
	s := newTestServer(t, nil)

	rec := post(t, s, BreakdownRequestBody{
		Table:    defaultTable(),
		Features: []string{"Feature_B"},
		Rules:    domain.RuleTable{"Feature_B": {Kind: domain.RuleSumNumeric, Column: "N"}},
		Scale:    10,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp BreakdownResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "0.7", resp.Rows[0].Percentage)
	assert.Equal(t, "0.3", resp.Rows[1].Percentage)
}

func TestCreateBreakdown_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantType   string
	}{
		{
			name:       "malformed json",
			body:       `{"table":`,
			wantStatus: http.StatusBadRequest,
			wantType:   "Validation",
		},
		{
			name:       "feature without rule",
			body:       BreakdownRequestBody{Table: defaultTable(), Features: []string{"Id"}},
			wantStatus: http.StatusBadRequest,
			wantType:   "ConfigurationError",
		},
		{
			name:       "negative scale",
			body:       BreakdownRequestBody{Table: defaultTable(), Scale: -5},
			wantStatus: http.StatusBadRequest,
			wantType:   "Validation",
		},
		{
			name: "all zero totals",
			body: BreakdownRequestBody{
				Table:    tableBody(domain.Row{"Id": "1", "Feature_A": "X", "Feature_B": "p", "N": "0"}),
				Features: []string{"Feature_A"},
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   "InsufficientCardinality",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, newTestServer(t, nil), tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantType, resp.Type)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestCreateBreakdown_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, func(c *configuration.HTTPConfig) { c.MaxBodyBytes = 16 })

	rec := post(t, s, `{"table": {"columns": [`+strings.Repeat(" ", 64)+`]}}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *configuration.HTTPConfig) {
		c.RequestsPerSecond = 0.001
		c.Burst = 1
	})

	first := httptest.NewRecorder()
	s.Handler().ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	s.Handler().ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()
	cancel()

	assert.NoError(t, <-done)
}

func TestCreateBreakdown_DefaultRule(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := configuration.DefaultConfig()
	cfg.DefaultRule = &domain.RuleSpec{Kind: domain.RuleSumNumeric, Column: "N"}

	table := domain.Table{
		Columns: []domain.Column{
			{Name: "Id", Type: domain.ColumnText},
			{Name: "Feature_D", Type: domain.ColumnText},
			{Name: "N", Type: domain.ColumnInteger},
		},
		Rows: []domain.Row{
			{"Id": "1", "Feature_D": "d1", "N": "1"},
			{"Id": "2", "Feature_D": "d2", "N": "3"},
		},
	}
	body := BreakdownRequestBody{Table: table, Features: []string{"Feature_D"}}

	t.Run("applied to features without a rule", func(t *testing.T) {
		s := NewServer(breakdown.NewAssembler(breakdown.WithLogger(logger)), logger, cfg.HTTP, Defaults{
			Scale:       cfg.Scale,
			Rules:       cfg.Rules,
			DefaultRule: cfg.DefaultRule,
		})

		rec := post(t, s, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp BreakdownResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Rows, 2)
		assert.Equal(t, "0.250", resp.Rows[0].Percentage)
		assert.Equal(t, "0.750", resp.Rows[1].Percentage)
	})

	t.Run("explicit rule wins over the default", func(t *testing.T) {
		s := NewServer(breakdown.NewAssembler(breakdown.WithLogger(logger)), logger, cfg.HTTP, Defaults{
			Scale:       cfg.Scale,
			Rules:       cfg.Rules,
			DefaultRule: cfg.DefaultRule,
		})

		withRule := body
		withRule.Rules = domain.RuleTable{"Feature_D": {Kind: domain.RuleCountIdentifier, Column: "Id"}}
		rec := post(t, s, withRule)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp BreakdownResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Rows, 2)
		assert.Equal(t, "0.500", resp.Rows[0].Percentage)
	})

	t.Run("no default rule is a configuration error", func(t *testing.T) {
		s := newTestServer(t, nil)

		rec := post(t, s, body)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ConfigurationError", resp.Type)
	})
}
