package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListAcceptsBothForms(t *testing.T) {
	var req BatchRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"endpoints": ["markets"],
		"params": {"coinIds": "bitcoin", "protocols": ["aave", "curve"]}
	}`), &req))

	assert.Equal(t, []string{"bitcoin"}, req.ParamList("coinIds"))
	assert.Equal(t, []string{"aave", "curve"}, req.ParamList("protocols"))
}

func TestStringListRejectsOtherTypes(t *testing.T) {
	var list StringList
	assert.Error(t, json.Unmarshal([]byte(`42`), &list))
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &list))
}

func TestParamListFallback(t *testing.T) {
	req := BatchRequest{Params: map[string]StringList{"coinId": {"bitcoin"}}}

	assert.Equal(t, []string{"bitcoin"}, req.ParamList("coinIds", "coinId"))
	assert.Nil(t, req.ParamList("protocols"))
}

func TestBodyRendering(t *testing.T) {
	result := NewAggregateResult()
	result.Sections["global"] = map[string]int{"coins": 12000}
	result.Errors["feargreed"] = "sentiment error (status 503)"
	result.SubErrors["tvl"] = map[string]string{"curve": "defi error (status 500)"}

	body := result.Body()

	assert.Contains(t, body, "global")
	assert.Equal(t, "sentiment error (status 503)", body["feargreedError"])
	assert.NotContains(t, body, "feargreed")

	partial, ok := body["_partialErrors"].([]string)
	require.True(t, ok)
	assert.Len(t, partial, 2)
	assert.Contains(t, partial, "feargreed: sentiment error (status 503)")
	assert.Contains(t, partial, "tvl.curve: defi error (status 500)")
}

func TestBodyNoPartialErrorsWhenNothingSucceeded(t *testing.T) {
	result := NewAggregateResult()
	result.Errors["global"] = "boom"
	result.FirstError = "boom"

	body := result.Body()

	assert.False(t, result.HasData())
	assert.Contains(t, body, "globalError")
	assert.NotContains(t, body, "_partialErrors")
}
