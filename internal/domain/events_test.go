package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureApportionedIdempotencyKey(t *testing.T) {
	key := FeatureApportionedIdempotencyKey("wf-1", "Feature_A")

	assert.Len(t, key, 64)
	assert.Equal(t, key, FeatureApportionedIdempotencyKey("wf-1", "Feature_A"))
	assert.NotEqual(t, key, FeatureApportionedIdempotencyKey("wf-1", "Feature_B"))
	assert.NotEqual(t, key, FeatureApportionedIdempotencyKey("wf-2", "Feature_A"))
	assert.Equal(t, GenerateIdempotencyKey("wf-1", ":apportioned:Feature_A"), key)
}

func TestNewFeatureApportionedEvent(t *testing.T) {
	tenant := uuid.New()
	summary := ApportionmentSummary{Cardinality: 3, GrandTotal: 9, Scale: 1000, Distributed: 1}

	env, err := NewFeatureApportionedEvent(tenant, "wf-1", "run-1", "Feature_A", summary)
	require.NoError(t, err)

	assert.Equal(t, EventTypeFeatureApportioned, env.EventType)
	assert.Equal(t, 1, env.Version)
	assert.Equal(t, tenant, env.TenantID)
	assert.Equal(t, "wf-1", env.WorkflowID)
	assert.Equal(t, "run-1", env.RunID)
	assert.Equal(t, FeatureApportionedIdempotencyKey("wf-1", "Feature_A"), env.IdempotencyKey)
	assert.False(t, env.OccurredAt.IsZero())

	var payload FeatureApportionedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "Feature_A", payload.Feature)
	assert.Equal(t, summary, payload.ApportionmentSummary)
}

func TestNewFeatureApportionedEvent_Invalid(t *testing.T) {
	summary := ApportionmentSummary{Cardinality: 1, GrandTotal: 1, Scale: 1000}

	_, err := NewFeatureApportionedEvent(uuid.New(), "wf-1", "run-1", "", summary)
	assert.Error(t, err)

	_, err = NewFeatureApportionedEvent(uuid.Nil, "wf-1", "run-1", "F", summary)
	assert.Error(t, err)

	_, err = NewFeatureApportionedEvent(uuid.New(), "", "run-1", "F", summary)
	assert.Error(t, err)
}

func FuzzFeatureApportionedIdempotencyKey(f *testing.F) {
	f.Add("", "")
	f.Add("breakdown-1", "Feature_A")
	f.Add("wf\x00id", "feature\nname")
	f.Add("unicode-你好", "Feature_Z")

	f.Fuzz(func(t *testing.T, workflowID, feature string) {
		key := FeatureApportionedIdempotencyKey(workflowID, feature)
		if len(key) != 64 {
			t.Fatalf("key length %d, want 64", len(key))
		}
		for i, r := range key {
			if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
				t.Fatalf("invalid hex character %c at position %d", r, i)
			}
		}
		if key != FeatureApportionedIdempotencyKey(workflowID, feature) {
			t.Fatalf("key not deterministic for %q/%q", workflowID, feature)
		}
	})
}
