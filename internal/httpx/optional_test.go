package httpx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type limitPatch struct {
	ItemLimit  OptionalInt  `json:"item_limit"`
	SubgroupID OptionalUint `json:"subgroup_id"`
}

func TestOptionalDistinguishesAbsentFromNull(t *testing.T) {
	var absent limitPatch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	assert.False(t, absent.ItemLimit.Set)

	var null limitPatch
	require.NoError(t, json.Unmarshal([]byte(`{"item_limit":null,"subgroup_id":null}`), &null))
	assert.True(t, null.ItemLimit.Set)
	assert.Nil(t, null.ItemLimit.Value)
	assert.True(t, null.SubgroupID.Set)

	var value limitPatch
	require.NoError(t, json.Unmarshal([]byte(`{"item_limit":4,"subgroup_id":7}`), &value))
	require.NotNil(t, value.ItemLimit.Value)
	assert.Equal(t, 4, *value.ItemLimit.Value)
	assert.Equal(t, uint(7), *value.SubgroupID.Value)
}
