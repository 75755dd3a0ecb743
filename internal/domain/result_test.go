package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakdownFeature(t *testing.T) {
	table := sampleTable()

	rows, summary, err := BreakdownFeature(table.Rows, "Feature_A", SumNumeric{Col: "N"}, DefaultScale)
	require.NoError(t, err)

	assert.Equal(t, []ResultRow{
		{FeatureName: "Feature_A", FeatureValue: "a1", Total: 2, Percentage: NewPercentage(223, 1000)},
		{FeatureName: "Feature_A", FeatureValue: "a2", Total: 3, Percentage: NewPercentage(333, 1000)},
		{FeatureName: "Feature_A", FeatureValue: "a3", Total: 4, Percentage: NewPercentage(444, 1000)},
	}, rows)
	assert.Equal(t, ApportionmentSummary{Cardinality: 3, GrandTotal: 9, Scale: 1000, Distributed: 1}, summary)
}

func TestBreakdownFeature_Errors(t *testing.T) {
	t.Run("aggregation failure", func(t *testing.T) {
		_, _, err := BreakdownFeature([]Row{{"F": "x", "N": "?"}}, "F", SumNumeric{Col: "N"}, DefaultScale)
		assert.ErrorIs(t, err, ErrInvalidRow)
	})

	t.Run("apportionment failure", func(t *testing.T) {
		_, _, err := BreakdownFeature([]Row{{"F": "x", "N": "0"}}, "F", SumNumeric{Col: "N"}, DefaultScale)
		assert.ErrorIs(t, err, ErrInsufficientCardinality)
	})
}

func TestConcat(t *testing.T) {
	a := []ResultRow{{FeatureName: "A", FeatureValue: "1"}}
	b := []ResultRow{{FeatureName: "B", FeatureValue: "1"}, {FeatureName: "B", FeatureValue: "2"}}

	got := Concat([][]ResultRow{a, nil, b})
	assert.Equal(t, []ResultRow{a[0], b[0], b[1]}, got)
	assert.Empty(t, Concat(nil))
}
