package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPoolPrice(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    float64
		ok      bool
	}{
		{"bare object", `{"priceUsd": 0.042}`, 0.042, true},
		{"bare object string price", `{"priceUsd": "0.042"}`, 0.042, true},
		{"array", `[{"priceUsd": 1.5}, {"priceUsd": 2.5}]`, 1.5, true},
		{"data wrapper", `{"data": [{"priceUsd": 3.25}]}`, 3.25, true},
		{"pools wrapper", `{"pools": [{"priceUsd": 0.0001}]}`, 0.0001, true},
		{"bare object wins over pools", `{"priceUsd": 7, "pools": [{"priceUsd": 9}]}`, 7, true},
		{"zero rejected", `{"priceUsd": 0}`, 0, false},
		{"negative rejected", `{"priceUsd": -1.5}`, 0, false},
		{"non numeric rejected", `{"priceUsd": "soon"}`, 0, false},
		{"empty array", `[]`, 0, false},
		{"empty object", `{}`, 0, false},
		{"garbage", `not json`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, ok := ExtractPoolPrice([]byte(tt.payload))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, price, 1e-12)
			}
		})
	}
}

func TestExtractQuotePrice(t *testing.T) {
	t.Run("by id", func(t *testing.T) {
		payload := `{"data": {"12345": {"quote": {"USD": {"price": 0.0132}}}}}`
		price, ok := ExtractQuotePrice([]byte(payload))
		require.True(t, ok)
		assert.InDelta(t, 0.0132, price, 1e-12)
	})

	t.Run("by symbol returns array", func(t *testing.T) {
		payload := `{"data": {"ZIG": [{"quote": {"USD": {"price": 0.0132}}}]}}`
		price, ok := ExtractQuotePrice([]byte(payload))
		require.True(t, ok)
		assert.InDelta(t, 0.0132, price, 1e-12)
	})

	t.Run("empty data", func(t *testing.T) {
		_, ok := ExtractQuotePrice([]byte(`{"data": {}}`))
		assert.False(t, ok)
	})

	t.Run("missing quote", func(t *testing.T) {
		_, ok := ExtractQuotePrice([]byte(`{"data": {"ZIG": {"name": "ZigChain"}}}`))
		assert.False(t, ok)
	})
}

type fakePoolSource struct {
	calls   int
	payload []byte
	err     error
}

func (f *fakePoolSource) TokenPools(ctx context.Context, denom string) ([]byte, error) {
	f.calls++
	return f.payload, f.err
}

type fakeQuoteSource struct {
	calls   int
	payload []byte
	err     error
	lastID  string
	lastSym string
}

func (f *fakeQuoteSource) QuotesLatest(ctx context.Context, assetID, assetSymbol string) ([]byte, error) {
	f.calls++
	f.lastID = assetID
	f.lastSym = assetSymbol
	return f.payload, f.err
}

func TestResolverTokenPriceCached(t *testing.T) {
	source := &fakePoolSource{payload: []byte(`{"priceUsd": 0.5}`)}
	r := NewResolver(source, nil, "", "ZIG", time.Minute)

	price := r.TokenPriceUSD(context.Background(), "coin.zig1abc.meme")
	require.NotNil(t, price)
	assert.InDelta(t, 0.5, *price, 1e-12)

	r.TokenPriceUSD(context.Background(), "coin.zig1abc.meme")
	assert.Equal(t, 1, source.calls)
}

func TestResolverFailureCachedAsNil(t *testing.T) {
	source := &fakePoolSource{err: errors.New("boom")}
	r := NewResolver(source, nil, "", "ZIG", time.Minute)

	assert.Nil(t, r.TokenPriceUSD(context.Background(), "x"))
	assert.Nil(t, r.TokenPriceUSD(context.Background(), "x"))
	assert.Equal(t, 1, source.calls, "failed lookup is cached for the TTL window")
}

func TestResolverCacheExpires(t *testing.T) {
	source := &fakePoolSource{payload: []byte(`{"priceUsd": 0.5}`)}
	r := NewResolver(source, nil, "", "ZIG", 10*time.Millisecond)

	r.TokenPriceUSD(context.Background(), "x")
	time.Sleep(20 * time.Millisecond)
	r.TokenPriceUSD(context.Background(), "x")
	assert.Equal(t, 2, source.calls)
}

func TestResolverNativePrice(t *testing.T) {
	source := &fakeQuoteSource{payload: []byte(`{"data": {"12345": {"quote": {"USD": {"price": 0.0132}}}}}`)}
	r := NewResolver(nil, source, "12345", "ZIG", time.Minute)

	price := r.NativePriceUSD(context.Background())
	require.NotNil(t, price)
	assert.InDelta(t, 0.0132, *price, 1e-12)
	assert.Equal(t, "12345", source.lastID)

	r.NativePriceUSD(context.Background())
	assert.Equal(t, 1, source.calls)
}

func TestUSDValue(t *testing.T) {
	price := 0.5

	t.Run("scales by decimals", func(t *testing.T) {
		v := USDValue("150000000", 6, &price)
		require.NotNil(t, v)
		assert.InDelta(t, 75.0, *v, 1e-9)
	})

	t.Run("nil price", func(t *testing.T) {
		assert.Nil(t, USDValue("150000000", 6, nil))
	})

	t.Run("non numeric amount", func(t *testing.T) {
		assert.Nil(t, USDValue("abc", 6, &price))
	})
}

func TestFormatUSD(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name  string
		value *float64
		want  string
	}{
		{"nil", nil, "n/a"},
		{"dollars", f(1234.5), "$1,234.50"},
		{"one dollar", f(1), "$1.00"},
		{"cents", f(0.0425), "$0.0425"},
		{"sub cent", f(0.000123), "$0.000123"},
		{"sub cent full precision", f(0.00012345678), "$0.00012346"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUSD(tt.value))
		})
	}
}
