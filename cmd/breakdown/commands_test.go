package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-breakdown/internal/configuration"
	"github.com/ahrav/go-breakdown/internal/domain"
)

const sampleInput = `1, a1, b1, c1, 1
2, a1, b2, c1, 1
3, a2, b3, c2, 1
4, a2, b1, c2, 2
5, a3, b2, c3, 2
6, a3, b3, c3, 2
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestBuildRequest(t *testing.T) {
	cfg := configuration.DefaultConfig()
	cfg.Source.Path = writeFile(t, t.TempDir(), "input.csv", sampleInput)

	req, err := buildRequest(cfg)
	require.NoError(t, err)
	require.NoError(t, req.Validate())

	assert.Equal(t, []string{"Feature_A", "Feature_B", "Feature_C"}, req.Features)
	assert.Len(t, req.Table.Rows, 6)
	assert.Equal(t, domain.DefaultScale, req.Scale)
}

func TestBuildRequest_NoInput(t *testing.T) {
	_, err := buildRequest(configuration.DefaultConfig())
	assert.Error(t, err)
}

func TestBuildRequest_FeatureWithoutRule(t *testing.T) {
	cfg := configuration.DefaultConfig()
	cfg.Source.Path = writeFile(t, t.TempDir(), "input.csv", "1,a,b,c,d,5\n")

	req, err := buildRequest(cfg)
	require.NoError(t, err)
	assert.ErrorIs(t, req.Validate(), domain.ErrConfiguration)

	cfg.DefaultRule = &domain.RuleSpec{Kind: domain.RuleSumNumeric, Column: "N"}
	req, err = buildRequest(cfg)
	require.NoError(t, err)
	assert.NoError(t, req.Validate())
}

func TestRunCmd(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "input.csv", sampleInput)
	config := writeFile(t, dir, "config.json", `{"sinks": {"console_rows": 0}, "observability": {"log_level": "error", "log_format": "text"}}`)
	out := filepath.Join(dir, "out", "breakdown.csv")
	db := filepath.Join(dir, "results.db")

	err := runCmd(context.Background(), []string{"-config", config, "-input", input, "-csv", out, "-sqlite", db})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, `Feature_Name,Feature_Value,Total,Percentage
Feature_A,a1,2,0.223
Feature_A,a2,3,0.333
Feature_A,a3,4,0.444
Feature_B,b1,2,0.334
Feature_B,b2,2,0.333
Feature_B,b3,2,0.333
Feature_C,c1,2,0.223
Feature_C,c2,3,0.333
Feature_C,c3,4,0.444
`, string(data))

	_, err = os.Stat(db)
	assert.NoError(t, err)
}
