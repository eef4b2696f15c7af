package decimals

import (
	"context"
	"errors"
	"testing"

	"highbuy-monitor/internal/clients_api/chainrest"

	"github.com/stretchr/testify/assert"
)

type fakeMetadataSource struct {
	calls int
	meta  *chainrest.DenomMetadata
	err   error
}

func (f *fakeMetadataSource) GetDenomMetadata(ctx context.Context, denom string) (*chainrest.DenomMetadata, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.meta, nil
}

func TestResolverNativePreSeeded(t *testing.T) {
	source := &fakeMetadataSource{}
	r := NewResolver(source, "uzig", 6)

	assert.Equal(t, uint32(6), r.Resolve(context.Background(), "uzig"))
	assert.Zero(t, source.calls)
}

func TestResolverPicksLargestExponent(t *testing.T) {
	source := &fakeMetadataSource{
		meta: &chainrest.DenomMetadata{
			Base: "coin.zig1abc.meme",
			DenomUnits: []chainrest.DenomUnit{
				{Denom: "coin.zig1abc.meme", Exponent: 0},
				{Denom: "mmeme", Exponent: 3},
				{Denom: "meme", Exponent: 6},
			},
		},
	}
	r := NewResolver(source, "uzig", 6)

	assert.Equal(t, uint32(6), r.Resolve(context.Background(), "coin.zig1abc.meme"))
	assert.Equal(t, 1, source.calls)

	// second lookup is served from the cache
	assert.Equal(t, uint32(6), r.Resolve(context.Background(), "coin.zig1abc.meme"))
	assert.Equal(t, 1, source.calls)
}

func TestResolverFailureCachedAsZero(t *testing.T) {
	source := &fakeMetadataSource{err: errors.New("connection refused")}
	r := NewResolver(source, "uzig", 6)

	assert.Equal(t, uint32(0), r.Resolve(context.Background(), "unknown"))
	assert.Equal(t, uint32(0), r.Resolve(context.Background(), "unknown"))
	assert.Equal(t, 1, source.calls, "failed lookup must not be retried")
}

func TestResolverNoSource(t *testing.T) {
	r := NewResolver(nil, "uzig", 6)

	assert.Equal(t, uint32(6), r.Resolve(context.Background(), "uzig"))
	assert.Equal(t, uint32(0), r.Resolve(context.Background(), "other"))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		decimals uint32
		want     string
	}{
		{"six decimals", "30000000", 6, "30.00"},
		{"zero decimals grouped", "29024932", 0, "29,024,932"},
		{"six decimals grouped", "1234567890000", 6, "1,234,567.89"},
		{"smaller than one unit", "500", 6, "0.00"},
		{"leading zeros", "0030000000", 6, "30.00"},
		{"empty", "", 6, "0"},
		{"non numeric passthrough", "n/a", 6, "n/a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.raw, tt.decimals))
		})
	}
}
