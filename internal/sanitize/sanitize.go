// Package sanitize validates and normalizes caller-supplied tokens before
// they are interpolated into outbound provider requests. A rejected value is
// reported to the caller as an error; the gateway treats the affected
// endpoint as not requested instead of failing the batch.
package sanitize

import (
	"errors"
	"regexp"
	"strings"
)

// MaxIdentifiers bounds the fan-out cost of list-valued parameters
const MaxIdentifiers = 5

var (
	// ErrInvalidIdentifier indicates a coin id or protocol slug outside the allow-pattern
	ErrInvalidIdentifier = errors.New("identifier must match ^[a-z0-9_-]{1,100}$")
	// ErrInvalidWalletAddress indicates a wallet address not matching its chain's format
	ErrInvalidWalletAddress = errors.New("invalid wallet address for chain")
	// ErrUnknownChain indicates a chain selector outside the allowlist
	ErrUnknownChain = errors.New("unknown chain selector")
)

var (
	identifierPattern = regexp.MustCompile(`^[a-z0-9_-]{1,100}$`)
	evmAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// knownChains is the closed set of supported chain selectors
var knownChains = map[string]bool{
	"ethereum": true,
	"polygon":  true,
	"arbitrum": true,
	"optimism": true,
	"base":     true,
	"solana":   true,
}

// Identifier normalizes a coin id or protocol slug. Matching is
// case-insensitive; the returned value is lower-cased.
func Identifier(raw string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if !identifierPattern.MatchString(normalized) {
		return "", ErrInvalidIdentifier
	}
	return normalized, nil
}

// IdentifierList normalizes a list of identifiers, dropping invalid entries
// and truncating to MaxIdentifiers before any outbound call is issued.
func IdentifierList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, raw := range values {
		id, err := Identifier(raw)
		if err != nil {
			continue
		}
		out = append(out, id)
		if len(out) == MaxIdentifiers {
			break
		}
	}
	return out
}

// ChainSelector validates a chain selector against the allowlist
func ChainSelector(raw string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if !knownChains[normalized] {
		return "", ErrUnknownChain
	}
	return normalized, nil
}

// ChainList validates a list of chain selectors, dropping unknown entries
// and truncating to MaxIdentifiers
func ChainList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, raw := range values {
		chain, err := ChainSelector(raw)
		if err != nil {
			continue
		}
		out = append(out, chain)
		if len(out) == MaxIdentifiers {
			break
		}
	}
	return out
}

// WalletAddress validates a wallet address against the expected format of
// the given chain. EVM chains use 0x-prefixed 20-byte hex; Solana addresses
// are base58 encoded and 32-44 characters long.
func WalletAddress(address, chain string) error {
	address = strings.TrimSpace(address)

	if chain == "solana" {
		if !isBase58Address(address) {
			return ErrInvalidWalletAddress
		}
		return nil
	}

	if !evmAddressPattern.MatchString(address) {
		return ErrInvalidWalletAddress
	}
	return nil
}

// isBase58Address checks length and the base58 alphabet
// (123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz)
func isBase58Address(address string) bool {
	if len(address) < 32 || len(address) > 44 {
		return false
	}
	const validChars = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	for _, char := range address {
		if !strings.ContainsRune(validChars, char) {
			return false
		}
	}
	return true
}
