package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifier(t *testing.T) {
	t.Run("ValidLowercased", func(t *testing.T) {
		id, err := Identifier("Bitcoin")
		assert.NoError(t, err)
		assert.Equal(t, "bitcoin", id)
	})

	t.Run("ValidWithSeparators", func(t *testing.T) {
		id, err := Identifier("usd-coin_v2")
		assert.NoError(t, err)
		assert.Equal(t, "usd-coin_v2", id)
	})

	t.Run("RejectsInjection", func(t *testing.T) {
		_, err := Identifier("bitcoin; DROP")
		assert.ErrorIs(t, err, ErrInvalidIdentifier)
	})

	t.Run("RejectsEmpty", func(t *testing.T) {
		_, err := Identifier("")
		assert.ErrorIs(t, err, ErrInvalidIdentifier)
	})

	t.Run("RejectsTooLong", func(t *testing.T) {
		_, err := Identifier(strings.Repeat("a", 101))
		assert.ErrorIs(t, err, ErrInvalidIdentifier)
	})

	t.Run("RejectsPathTraversal", func(t *testing.T) {
		_, err := Identifier("../etc/passwd")
		assert.ErrorIs(t, err, ErrInvalidIdentifier)
	})
}

func TestIdentifierList(t *testing.T) {
	t.Run("DropsInvalidEntries", func(t *testing.T) {
		out := IdentifierList([]string{"bitcoin", "not valid!", "Ethereum"})
		assert.Equal(t, []string{"bitcoin", "ethereum"}, out)
	})

	t.Run("TruncatesToMax", func(t *testing.T) {
		in := []string{"a", "b", "c", "d", "e", "f", "g"}
		out := IdentifierList(in)
		assert.Len(t, out, MaxIdentifiers)
	})

	t.Run("EmptyInput", func(t *testing.T) {
		assert.Empty(t, IdentifierList(nil))
	})
}

func TestChainSelector(t *testing.T) {
	chain, err := ChainSelector(" Ethereum ")
	assert.NoError(t, err)
	assert.Equal(t, "ethereum", chain)

	_, err = ChainSelector("dogechain")
	assert.ErrorIs(t, err, ErrUnknownChain)
}

func TestChainList(t *testing.T) {
	out := ChainList([]string{"ethereum", "mars", "solana"})
	assert.Equal(t, []string{"ethereum", "solana"}, out)
}

func TestWalletAddress(t *testing.T) {
	t.Run("ValidEVM", func(t *testing.T) {
		err := WalletAddress("0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb1", "ethereum")
		assert.NoError(t, err)
	})

	t.Run("InvalidEVM", func(t *testing.T) {
		assert.Error(t, WalletAddress("0x1234", "ethereum"))
		assert.Error(t, WalletAddress("742d35Cc6634C0532925a3b844Bc9e7595f0bEb1", "polygon"))
	})

	t.Run("ValidSolana", func(t *testing.T) {
		err := WalletAddress("4Nd1mYQFGzPMB8yUXtrQZBtg7bcrXFWhWDMhKQrWmWMV", "solana")
		assert.NoError(t, err)
	})

	t.Run("InvalidSolana", func(t *testing.T) {
		// 0 and O are outside the base58 alphabet
		assert.Error(t, WalletAddress("0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl", "solana"))
		assert.Error(t, WalletAddress("tooshort", "solana"))
	})
}
