package api

import (
	"errors"
	"maps"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ahrav/go-breakdown/internal/domain"
	bderrors "github.com/ahrav/go-breakdown/internal/errors"
)

// BreakdownRequestBody is the body of POST /v1/breakdowns. Features default
// to every table column that has a rule, Rules are merged over the server's
// rules, features still without a rule get the server's default rule when one
// is configured, and Scale defaults to the server's scale.
type BreakdownRequestBody struct {
	Table    domain.Table     `json:"table"`
	Features []string         `json:"features,omitempty"`
	Rules    domain.RuleTable `json:"rules,omitempty"`
	Scale    int64            `json:"scale,omitempty"`
}

// ResultRowBody is one result row of a response.
type ResultRowBody struct {
	FeatureName  string  `json:"feature_name"`
	FeatureValue string  `json:"feature_value"`
	Total        int64   `json:"total"`
	Percentage   string  `json:"percentage"`
	Value        float64 `json:"value"`
	Units        int64   `json:"units"`
	Scale        int64   `json:"scale"`
}

// BreakdownResponse is the body of a successful breakdown.
type BreakdownResponse struct {
	Rows      []ResultRowBody                        `json:"rows"`
	Summaries map[string]domain.ApportionmentSummary `json:"summaries"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) createBreakdown(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)

	var body BreakdownRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, ErrorResponse{Error: err.Error(), Type: string(bderrors.ErrorTypeValidation)})
		return
	}

	req := s.toRequest(body)
	result, err := s.assembler.Assemble(c.Request.Context(), req)
	if err != nil {
		classified := bderrors.Classify(err)
		s.logger.Warn("breakdown failed", "type", classified.Type, "error", err)
		c.JSON(bderrors.HTTPStatus(err), ErrorResponse{Error: err.Error(), Type: string(classified.Type)})
		return
	}

	c.JSON(http.StatusOK, toResponse(result))
}

func (s *Server) toRequest(body BreakdownRequestBody) domain.BreakdownRequest {
	rules := make(domain.RuleTable, len(s.defaults.Rules)+len(body.Rules))
	maps.Copy(rules, s.defaults.Rules)
	maps.Copy(rules, body.Rules)

	features := body.Features
	if len(features) == 0 {
		for _, col := range body.Table.Columns {
			if _, ok := rules[col.Name]; ok {
				features = append(features, col.Name)
			}
		}
	}

	if s.defaults.DefaultRule != nil {
		for _, f := range features {
			if _, ok := rules[f]; !ok {
				rules[f] = *s.defaults.DefaultRule
			}
		}
	}

	scale := body.Scale
	if scale == 0 {
		scale = s.defaults.Scale
	}

	return domain.BreakdownRequest{
		Table:    body.Table,
		Features: features,
		Rules:    rules,
		Scale:    scale,
	}
}

func toResponse(result *domain.BreakdownResult) BreakdownResponse {
	rows := make([]ResultRowBody, len(result.Rows))
	for i, r := range result.Rows {
		rows[i] = ResultRowBody{
			FeatureName:  r.FeatureName,
			FeatureValue: r.FeatureValue,
			Total:        r.Total,
			Percentage:   r.Percentage.String(),
			Value:        r.Percentage.Float64(),
			Units:        r.Percentage.Units,
			Scale:        r.Percentage.Scale,
		}
	}
	return BreakdownResponse{Rows: rows, Summaries: result.Summaries}
}
