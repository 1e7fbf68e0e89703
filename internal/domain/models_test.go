package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtypeSet_JSON(t *testing.T) {
	rec := MatchRecord{
		BiospecimenID:    "BS_RNA_1",
		PathologySubtype: NewSubtypeSet("SHH", "Group3", "Group4"),
		PredictedSubtype: "Group3",
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"pathology_subtype":"SHH,Group3,Group4"`)

	var decoded MatchRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "SHH,Group3,Group4", decoded.PathologySubtype.String())
	assert.True(t, decoded.PathologySubtype.Contains("Group3"))
}

func TestSubtypeSet_JSONEmpty(t *testing.T) {
	data, err := json.Marshal(SubtypeSet{})
	require.NoError(t, err)
	assert.Equal(t, `""`, string(data))

	var s SubtypeSet
	require.NoError(t, json.Unmarshal(data, &s))
	assert.True(t, s.IsEmpty())
}
