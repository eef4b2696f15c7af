package decimals

import (
	"context"
	"strings"

	"highbuy-monitor/internal/cache"
	"highbuy-monitor/internal/clients_api/chainrest"
	logging "highbuy-monitor/internal/infra/log"

	"go.uber.org/zap"
)

// MetadataSource supplies bank denom metadata. Satisfied by the chainrest
// client; nil means no REST endpoint is configured.
type MetadataSource interface {
	GetDenomMetadata(ctx context.Context, denom string) (*chainrest.DenomMetadata, error)
}

// Resolver answers "how many decimal places does this denom have". Answers
// are cached forever, including failures: a denom whose metadata cannot be
// fetched resolves to 0 and is never queried again.
type Resolver struct {
	source MetadataSource
	cache  *cache.Cache[uint32]
}

// NewResolver creates a resolver pre-seeded with the native denom so the hot
// path never hits the network for it.
func NewResolver(source MetadataSource, nativeDenom string, nativeDecimals uint32) *Resolver {
	r := &Resolver{
		source: source,
		cache:  cache.New[uint32](),
	}
	if nativeDenom != "" {
		r.cache.Set(nativeDenom, nativeDecimals, 0)
	}
	return r
}

// Resolve returns the decimal count for a denom. The largest exponent among
// the denom's units is taken; a denom with no usable metadata resolves to 0.
func (r *Resolver) Resolve(ctx context.Context, denom string) uint32 {
	denom = strings.TrimSpace(denom)
	if denom == "" {
		return 0
	}

	if dec, ok := r.cache.Get(denom); ok {
		return dec
	}

	dec := r.lookup(ctx, denom)
	r.cache.Set(denom, dec, 0)
	return dec
}

func (r *Resolver) lookup(ctx context.Context, denom string) uint32 {
	if r.source == nil {
		return 0
	}

	meta, err := r.source.GetDenomMetadata(ctx, denom)
	if err != nil {
		logging.LogWarn("Failed to resolve denom decimals, assuming 0",
			zap.String("denom", denom),
			zap.Error(err))
		return 0
	}

	var max uint32
	for _, unit := range meta.DenomUnits {
		if unit.Exponent > max {
			max = unit.Exponent
		}
	}
	return max
}
