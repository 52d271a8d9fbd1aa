package identity

import (
	"context"

	"github.com/variant-dev/variant/internal/cache"
)

// Provider supplies metadata for a variant that has none cached.
type Provider interface {
	Resolve(ctx context.Context, username string) (cache.Metadata, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, username string) (cache.Metadata, error)

// Resolve calls f.
func (f ProviderFunc) Resolve(ctx context.Context, username string) (cache.Metadata, error) {
	return f(ctx, username)
}

// MetadataCache is the part of the cache the switcher needs.
type MetadataCache interface {
	ReadOne(username string) (*cache.Metadata, error)
	Write(m cache.Metadata) error
}
