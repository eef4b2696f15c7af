package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swapEvents(action, offerAsset, offerAmount string) map[string][]string {
	return map[string][]string{
		"wasm.action":            {action},
		"wasm.offer_asset":       {offerAsset},
		"wasm.offer_amount":      {offerAmount},
		"wasm.sender":            {"zig1sender"},
		"wasm.receiver":          {"zig1receiver"},
		"wasm.ask_asset":         {"coin.zig1abc.meme"},
		"wasm.return_amount":     {"29024932"},
		"wasm._contract_address": {"zig1pool"},
		"tx.hash":                {"ABC123"},
	}
}

func TestExtractAcceptsSwap(t *testing.T) {
	e := Extractor{NativeDenom: "uzig", MinNativeAmount: 100}

	for _, action := range []string{"swap", "Swap"} {
		t.Run(action, func(t *testing.T) {
			event, ok := e.Extract(swapEvents(action, "uzig", "150000000"))
			require.True(t, ok)
			assert.Equal(t, "ABC123", event.TxHash)
			assert.Equal(t, "zig1sender", event.Sender)
			assert.Equal(t, "zig1receiver", event.Receiver)
			assert.Equal(t, "uzig", event.OfferAsset)
			assert.Equal(t, "150000000", event.OfferAmountRaw)
			assert.Equal(t, "coin.zig1abc.meme", event.AskAsset)
			assert.Equal(t, "29024932", event.ReturnAmountRaw)
			assert.Equal(t, "zig1pool", event.PoolAddress)
		})
	}
}

func TestExtractRejectsOtherActions(t *testing.T) {
	e := Extractor{NativeDenom: "uzig", MinNativeAmount: 100}

	for _, action := range []string{"SWAP", "provide_liquidity", "transfer", ""} {
		_, ok := e.Extract(swapEvents(action, "uzig", "150000000"))
		assert.False(t, ok, "action %q must be rejected", action)
	}
}

func TestExtractRejectsNonNativeOffer(t *testing.T) {
	e := Extractor{NativeDenom: "uzig", MinNativeAmount: 100}

	_, ok := e.Extract(swapEvents("swap", "coin.zig1abc.meme", "150000000"))
	assert.False(t, ok)
}

func TestExtractThresholdInclusive(t *testing.T) {
	e := Extractor{NativeDenom: "uzig", MinNativeAmount: 100}

	// exactly 100 ZIG passes
	_, ok := e.Extract(swapEvents("swap", "uzig", "100000000"))
	assert.True(t, ok)

	// just below does not
	_, ok = e.Extract(swapEvents("swap", "uzig", "99999999"))
	assert.False(t, ok)
}

func TestExtractRejectsUnparseableAmount(t *testing.T) {
	e := Extractor{NativeDenom: "uzig", MinNativeAmount: 100}

	for _, amount := range []string{"", "not-a-number", "NaN"} {
		_, ok := e.Extract(swapEvents("swap", "uzig", amount))
		assert.False(t, ok, "amount %q must be rejected", amount)
	}
}

func TestExtractUsesFirstValueOfRepeatedKey(t *testing.T) {
	e := Extractor{NativeDenom: "uzig", MinNativeAmount: 100}

	events := swapEvents("swap", "uzig", "150000000")
	events["wasm.offer_amount"] = []string{"150000000", "1"}
	events["wasm.sender"] = []string{"zig1first", "zig1second"}

	event, ok := e.Extract(events)
	require.True(t, ok)
	assert.Equal(t, "150000000", event.OfferAmountRaw)
	assert.Equal(t, "zig1first", event.Sender)
}

func TestExtractMissingOptionalFieldsDefaultEmpty(t *testing.T) {
	e := Extractor{NativeDenom: "uzig", MinNativeAmount: 100}

	events := map[string][]string{
		"wasm.action":       {"swap"},
		"wasm.offer_asset":  {"uzig"},
		"wasm.offer_amount": {"150000000"},
	}
	event, ok := e.Extract(events)
	require.True(t, ok)
	assert.Empty(t, event.TxHash)
	assert.Empty(t, event.Sender)
	assert.Empty(t, event.AskAsset)
}
