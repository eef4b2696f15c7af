package pricing

// Payload extraction for the price sources. The pool aggregator has shipped
// several response shapes over time, so extraction is an ordered list of
// strategies tried against the raw bytes; the first strictly-positive finite
// number wins.

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

type extractStrategy func(payload []byte) (float64, bool)

var poolStrategies = []extractStrategy{
	bareObjectPrice,
	firstArrayPrice,
	firstDataPrice,
	firstPoolsPrice,
}

// ExtractPoolPrice probes a pool listing payload for a USD price.
func ExtractPoolPrice(payload []byte) (float64, bool) {
	for _, strategy := range poolStrategies {
		if price, ok := strategy(payload); ok {
			return price, true
		}
	}
	return 0, false
}

type pricedObject struct {
	PriceUsd interface{} `json:"priceUsd"`
}

func bareObjectPrice(payload []byte) (float64, bool) {
	var obj pricedObject
	if err := json.Unmarshal(payload, &obj); err != nil {
		return 0, false
	}
	return toPositiveFinite(obj.PriceUsd)
}

func firstArrayPrice(payload []byte) (float64, bool) {
	var arr []pricedObject
	if err := json.Unmarshal(payload, &arr); err != nil || len(arr) == 0 {
		return 0, false
	}
	return toPositiveFinite(arr[0].PriceUsd)
}

func firstDataPrice(payload []byte) (float64, bool) {
	var wrapper struct {
		Data []pricedObject `json:"data"`
	}
	if err := json.Unmarshal(payload, &wrapper); err != nil || len(wrapper.Data) == 0 {
		return 0, false
	}
	return toPositiveFinite(wrapper.Data[0].PriceUsd)
}

func firstPoolsPrice(payload []byte) (float64, bool) {
	var wrapper struct {
		Pools []pricedObject `json:"pools"`
	}
	if err := json.Unmarshal(payload, &wrapper); err != nil || len(wrapper.Pools) == 0 {
		return 0, false
	}
	return toPositiveFinite(wrapper.Pools[0].PriceUsd)
}

// ExtractQuotePrice pulls the USD price out of a CoinMarketCap quotes
// payload: data.<first key>, unwrapping a one-element array when the lookup
// was by symbol, then quote.USD.price.
func ExtractQuotePrice(payload []byte) (float64, bool) {
	var wrapper struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &wrapper); err != nil || len(wrapper.Data) == 0 {
		return 0, false
	}

	keys := make([]string, 0, len(wrapper.Data))
	for key := range wrapper.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	raw := wrapper.Data[keys[0]]

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err == nil {
		if len(entries) == 0 {
			return 0, false
		}
		raw = entries[0]
	}

	var entry struct {
		Quote struct {
			USD struct {
				Price interface{} `json:"price"`
			} `json:"USD"`
		} `json:"quote"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return 0, false
	}
	return toPositiveFinite(entry.Quote.USD.Price)
}

// toPositiveFinite coerces a decoded JSON value (number or numeric string)
// into a usable price. Zero, negative and non-finite values are rejected.
func toPositiveFinite(value interface{}) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0, false
	}
	return n, true
}
