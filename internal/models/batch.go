package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// StringList accepts either a single JSON string or an array of strings,
// since dashboard clients send both forms for list-valued parameters
type StringList []string

// UnmarshalJSON implements json.Unmarshaler
func (s *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StringList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("value must be a string or an array of strings")
	}
	*s = StringList(many)
	return nil
}

// BatchRequest represents the incoming batch aggregation request
type BatchRequest struct {
	// Endpoints is the ordered list of requested endpoint identifiers.
	// Unknown identifiers are skipped, not rejected.
	Endpoints []string `json:"endpoints"`

	// Params holds caller-supplied parameters. Every value is sanitized
	// before it reaches an outbound request.
	Params map[string]StringList `json:"params,omitempty"`

	// Optional provider credentials (BYOK)
	MarketDataKey string   `json:"marketDataKey,omitempty"`
	OnchainKey    string   `json:"onchainKey,omitempty"`
	WalletAddress string   `json:"walletAddress,omitempty"`
	Chains        []string `json:"chains,omitempty"`

	// Purpose declares what the caller will do with the data; it is checked
	// against each provider's redistribution policy. Empty means display.
	Purpose string `json:"purpose,omitempty"`
}

// ParamList returns the first non-empty parameter among the given keys
func (r *BatchRequest) ParamList(keys ...string) []string {
	for _, key := range keys {
		if values, ok := r.Params[key]; ok && len(values) > 0 {
			return values
		}
	}
	return nil
}

// AggregateResult holds the merged outcome of one batch dispatch. An
// endpoint appears in Sections or in Errors, never both; fan-out endpoints
// nest per-sub-key values under their endpoint key instead.
type AggregateResult struct {
	Sections map[string]interface{}
	Errors   map[string]string

	// SubErrors holds per-sub-key failures of fan-out endpoints that still
	// produced at least one usable sub-key
	SubErrors map[string]map[string]string

	// FirstError is the first error message encountered during dispatch,
	// used as the batch-level message when nothing succeeded
	FirstError string
}

// NewAggregateResult creates an empty aggregate result
func NewAggregateResult() *AggregateResult {
	return &AggregateResult{
		Sections:  make(map[string]interface{}),
		Errors:    make(map[string]string),
		SubErrors: make(map[string]map[string]string),
	}
}

// HasData reports whether the batch produced at least one usable section
func (r *AggregateResult) HasData() bool {
	return len(r.Sections) > 0
}

// Body renders the response payload: one key per successful endpoint, one
// "<endpoint>Error" key per failed endpoint, plus a _partialErrors list
// when the batch is a mix of success and failure.
func (r *AggregateResult) Body() map[string]interface{} {
	body := make(map[string]interface{}, len(r.Sections)+len(r.Errors)+1)

	for endpoint, value := range r.Sections {
		body[endpoint] = value
	}

	partial := make([]string, 0, len(r.Errors))
	for endpoint, message := range r.Errors {
		body[endpoint+"Error"] = message
		partial = append(partial, fmt.Sprintf("%s: %s", endpoint, message))
	}
	for endpoint, subs := range r.SubErrors {
		for subKey, message := range subs {
			partial = append(partial, fmt.Sprintf("%s.%s: %s", endpoint, subKey, message))
		}
	}
	sort.Strings(partial)

	if len(r.Sections) > 0 && len(partial) > 0 {
		body["_partialErrors"] = partial
	}

	return body
}
