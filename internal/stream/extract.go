package stream

import (
	"math"
	"strconv"
)

// SwapEvent is one accepted high buy, carrying the raw attribute values of a
// single transaction event. Amounts stay as base-unit decimal strings; the
// alert layer scales them for display.
type SwapEvent struct {
	TxHash          string
	Sender          string
	Receiver        string
	OfferAsset      string
	OfferAmountRaw  string
	AskAsset        string
	ReturnAmountRaw string
	PoolAddress     string
}

// microUnitsPerNative is the chain's micro-unit convention for the native
// coin. The threshold comparison always uses it, independent of the generic
// decimals resolution used for display.
const microUnitsPerNative = 1_000_000

// Extractor turns a frame's event-attribute map into a SwapEvent when the
// frame describes a native-funded swap at or above the alert threshold.
type Extractor struct {
	NativeDenom     string
	MinNativeAmount float64
}

// Extract applies the pass/reject decision. Event attributes may repeat a
// key; only the first value of each key is used. Rejection is not an error,
// just an absent result.
func (e Extractor) Extract(events map[string][]string) (SwapEvent, bool) {
	first := func(key string) string {
		if values := events[key]; len(values) > 0 {
			return values[0]
		}
		return ""
	}

	action := first("wasm.action")
	if action != "swap" && action != "Swap" {
		return SwapEvent{}, false
	}

	offerAsset := first("wasm.offer_asset")
	if offerAsset != e.NativeDenom {
		return SwapEvent{}, false
	}

	offerAmount := first("wasm.offer_amount")
	raw, err := strconv.ParseFloat(offerAmount, 64)
	if err != nil || math.IsNaN(raw) {
		return SwapEvent{}, false
	}
	nativeValue := raw / microUnitsPerNative
	if nativeValue < e.MinNativeAmount {
		return SwapEvent{}, false
	}

	return SwapEvent{
		TxHash:          first("tx.hash"),
		Sender:          first("wasm.sender"),
		Receiver:        first("wasm.receiver"),
		OfferAsset:      offerAsset,
		OfferAmountRaw:  offerAmount,
		AskAsset:        first("wasm.ask_asset"),
		ReturnAmountRaw: first("wasm.return_amount"),
		PoolAddress:     first("wasm._contract_address"),
	}, true
}
