package pricing

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"highbuy-monitor/internal/cache"
	logging "highbuy-monitor/internal/infra/log"

	"go.uber.org/zap"
)

// DefaultTTL bounds how long a resolved price (or a resolved failure) is
// served before the source is consulted again.
const DefaultTTL = 30 * time.Second

// PoolSource lists pools for a token denom. Satisfied by the degenter client.
type PoolSource interface {
	TokenPools(ctx context.Context, denom string) ([]byte, error)
}

// QuoteSource quotes an asset in USD. Satisfied by the cmc client.
type QuoteSource interface {
	QuotesLatest(ctx context.Context, assetID, assetSymbol string) ([]byte, error)
}

// Resolver answers "what is this asset worth in USD right now". Lookups are
// cached for a short TTL; a failed lookup caches nil for the same window so
// an upstream outage does not turn into a retry storm.
type Resolver struct {
	pools  PoolSource
	quotes QuoteSource

	nativeAssetID     string
	nativeAssetSymbol string

	ttl   time.Duration
	cache *cache.Cache[*float64]
}

func NewResolver(pools PoolSource, quotes QuoteSource, nativeAssetID, nativeAssetSymbol string, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Resolver{
		pools:             pools,
		quotes:            quotes,
		nativeAssetID:     nativeAssetID,
		nativeAssetSymbol: nativeAssetSymbol,
		ttl:               ttl,
		cache:             cache.New[*float64](),
	}
}

// TokenPriceUSD resolves a token's USD unit price from the pool aggregator.
// nil means "price unknown"; the answer is cached either way.
func (r *Resolver) TokenPriceUSD(ctx context.Context, denom string) *float64 {
	key := "token:" + denom
	if price, ok := r.cache.Get(key); ok {
		return price
	}

	price := r.lookupTokenPrice(ctx, denom)
	r.cache.Set(key, price, r.ttl)
	return price
}

func (r *Resolver) lookupTokenPrice(ctx context.Context, denom string) *float64 {
	if r.pools == nil {
		return nil
	}

	payload, err := r.pools.TokenPools(ctx, denom)
	if err != nil {
		logging.LogDebug("Token price lookup failed",
			zap.String("denom", denom),
			zap.Error(err))
		return nil
	}

	price, ok := ExtractPoolPrice(payload)
	if !ok {
		logging.LogDebug("No usable price in pools payload", zap.String("denom", denom))
		return nil
	}
	return &price
}

// NativePriceUSD resolves the native coin's USD price from the quote
// provider, by configured numeric id when set, otherwise by symbol.
func (r *Resolver) NativePriceUSD(ctx context.Context) *float64 {
	const key = "native"
	if price, ok := r.cache.Get(key); ok {
		return price
	}

	price := r.lookupNativePrice(ctx)
	r.cache.Set(key, price, r.ttl)
	return price
}

func (r *Resolver) lookupNativePrice(ctx context.Context) *float64 {
	if r.quotes == nil {
		return nil
	}
	if r.nativeAssetID == "" && r.nativeAssetSymbol == "" {
		return nil
	}

	payload, err := r.quotes.QuotesLatest(ctx, r.nativeAssetID, r.nativeAssetSymbol)
	if err != nil {
		logging.LogDebug("Native price lookup failed", zap.Error(err))
		return nil
	}

	price, ok := ExtractQuotePrice(payload)
	if !ok {
		logging.LogDebug("No usable price in quotes payload")
		return nil
	}
	return &price
}

// USDValue converts a raw base-unit amount at a unit price. nil if the price
// is unknown or the amount is not a finite number.
func USDValue(rawAmount string, decimals uint32, unitPrice *float64) *float64 {
	if unitPrice == nil {
		return nil
	}
	raw, err := strconv.ParseFloat(strings.TrimSpace(rawAmount), 64)
	if err != nil || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return nil
	}
	units := raw / math.Pow(10, float64(decimals))
	if math.IsNaN(units) || math.IsInf(units, 0) {
		return nil
	}
	value := units * (*unitPrice)
	return &value
}

// FormatUSD renders a USD value for display. The precision grows as the
// value shrinks so sub-cent token prices stay visible instead of rounding
// to $0.00.
func FormatUSD(value *float64) string {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return "n/a"
	}
	v := *value

	switch {
	case v >= 1:
		return "$" + groupFixed(v, 2)
	case v >= 0.01:
		return "$" + groupFixed(v, 4)
	default:
		// 6 to 8 fractional digits, trailing zeros beyond 6 trimmed
		s := strconv.FormatFloat(v, 'f', 8, 64)
		for strings.HasSuffix(s, "0") && len(s)-strings.IndexByte(s, '.') > 7 {
			s = s[:len(s)-1]
		}
		return "$" + s
	}
}

func groupFixed(v float64, digits int) string {
	s := strconv.FormatFloat(v, 'f', digits, 64)
	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]

	n := len(whole)
	if n <= 3 {
		return whole + frac
	}
	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}
	return b.String() + frac
}
