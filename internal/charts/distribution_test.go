package charts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributionKeepsKeyOrder(t *testing.T) {
	var agg Aggregates
	err := json.Unmarshal([]byte(`{"productTypeChart":{"Zeta":2,"Alpha":7,"Mid":0},"KAMChart":{"kam@example.com":4}}`), &agg)
	require.NoError(t, err)

	assert.Equal(t, Distribution{{Name: "Zeta", Count: 2}, {Name: "Alpha", Count: 7}, {Name: "Mid", Count: 0}}, agg.ProductTypes)
	assert.Equal(t, Distribution{{Name: "kam@example.com", Count: 4}}, agg.KAM)
	assert.EqualValues(t, 9, agg.ProductTypes.Total())
}

func TestDistributionDuplicateKeyKeepsFirstPosition(t *testing.T) {
	var dist Distribution
	require.NoError(t, json.Unmarshal([]byte(`{"a":1,"b":2,"a":3}`), &dist))
	assert.Equal(t, Distribution{{Name: "a", Count: 3}, {Name: "b", Count: 2}}, dist)
}

func TestDistributionNullAndMissing(t *testing.T) {
	var agg Aggregates
	require.NoError(t, json.Unmarshal([]byte(`{"productTypeChart":null}`), &agg))
	assert.Nil(t, agg.ProductTypes)
	assert.Nil(t, agg.KAM)
	assert.Empty(t, ToChartPoints(agg.KAM))
}

func TestDistributionRejectsInvalidCounts(t *testing.T) {
	cases := map[string]string{
		"negative": `{"a":-1}`,
		"fraction": `{"a":1.5}`,
		"string":   `{"a":"three"}`,
		"array":    `[1,2]`,
		"nested":   `{"a":{"b":1}}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			var dist Distribution
			assert.Error(t, json.Unmarshal([]byte(payload), &dist))
		})
	}
}

func TestDistributionMarshalPreservesOrder(t *testing.T) {
	raw, err := json.Marshal(Distribution{{Name: "z", Count: 1}, {Name: "a", Count: 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"z":1,"a":2}`, string(raw))
	assert.Equal(t, `{"z":1,"a":2}`, string(raw))
}
