package domain

// ResultRow is one (feature, value) line of a breakdown.
type ResultRow struct {
	FeatureName  string     `json:"feature_name" validate:"required"`
	FeatureValue string     `json:"feature_value"`
	Total        int64      `json:"total" validate:"min=0"`
	Percentage   Percentage `json:"percentage"`
}

// FeatureRows reshapes the apportionment of feature into result rows,
// keeping the order of apportioned.
func FeatureRows(feature string, apportioned []Apportioned) []ResultRow {
	rows := make([]ResultRow, len(apportioned))
	for i, a := range apportioned {
		rows[i] = ResultRow{
			FeatureName:  feature,
			FeatureValue: a.Value,
			Total:        a.Total,
			Percentage:   a.Percentage,
		}
	}
	return rows
}

// Concat joins per-feature results in the given order into a new slice.
func Concat(perFeature [][]ResultRow) []ResultRow {
	n := 0
	for _, rows := range perFeature {
		n += len(rows)
	}
	out := make([]ResultRow, 0, n)
	for _, rows := range perFeature {
		out = append(out, rows...)
	}
	return out
}

// BreakdownFeature computes the result rows of a single feature: it groups
// rows with rule and apportions the totals at scale.
func BreakdownFeature(rows []Row, feature string, rule AggregationRule, scale int64) ([]ResultRow, ApportionmentSummary, error) {
	shares, err := Aggregate(rows, feature, rule)
	if err != nil {
		return nil, ApportionmentSummary{}, err
	}
	apportioned, err := Apportion(shares, scale)
	if err != nil {
		return nil, ApportionmentSummary{}, err
	}
	return FeatureRows(feature, apportioned), Summarize(apportioned, scale), nil
}
