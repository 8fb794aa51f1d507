// Package policy exposes the redistribution policy gate consulted before
// provider data is returned to a caller. The gate itself is owned elsewhere;
// the gateway's obligation is to call it after a successful fetch and before
// responding, and to surface a denial as a user-facing error.
package policy

import "fmt"

// Purpose describes what the caller intends to do with the data
type Purpose string

const (
	// PurposeDisplay covers rendering in charts and dashboards
	PurposeDisplay Purpose = "display"
	// PurposeExport covers bulk export (spreadsheets, downloads)
	PurposeExport Purpose = "export"
)

// RequestContext carries the declared purpose and originating route
type RequestContext struct {
	Purpose Purpose
	Route   string
}

// PolicyError indicates a provider's redistribution terms deny the request
type PolicyError struct {
	Provider string
	Purpose  Purpose
	Reason   string
}

// Error implements the error interface
func (e *PolicyError) Error() string {
	return fmt.Sprintf("redistribution denied for provider %s (purpose %s): %s", e.Provider, e.Purpose, e.Reason)
}

// Gate is the redistribution policy check consumed by the gateway
type Gate interface {
	// AssertAllowed returns a *PolicyError when data sourced from the given
	// provider may not be returned for the declared purpose
	AssertAllowed(providerID string, ctx RequestContext) error
}

// StaticGate denies provider/purpose combinations from a fixed table
type StaticGate struct {
	denied map[string]map[Purpose]string
}

// NewDefaultGate returns the gate used when no external policy source is
// injected: market data may be displayed but not bulk-exported.
func NewDefaultGate() *StaticGate {
	return &StaticGate{
		denied: map[string]map[Purpose]string{
			"marketdata": {
				PurposeExport: "market data license does not permit bulk redistribution",
			},
		},
	}
}

// AssertAllowed implements Gate
func (g *StaticGate) AssertAllowed(providerID string, ctx RequestContext) error {
	purposes, ok := g.denied[providerID]
	if !ok {
		return nil
	}
	reason, ok := purposes[ctx.Purpose]
	if !ok {
		return nil
	}
	return &PolicyError{Provider: providerID, Purpose: ctx.Purpose, Reason: reason}
}
