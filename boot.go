package l10ncache

import (
	"context"

	"github.com/ZaguanLabs/l10ncache/cache"
)

// Boot builds a Localizer from cfg. It never fails: when the store cannot be
// reached the error is logged and the Localizer parses every catalog from
// disk. Options are applied after those derived from cfg.
func Boot(ctx context.Context, cfg Config, parser CatalogParser, opts ...Option) *Localizer {
	base := []Option{
		WithKeys(cfg.Keys()),
		WithLocale(DetermineLocale(cfg.Locale)),
		WithFootnote(cfg.Footnote),
		WithReadableTTL(cfg.ReadableMemoTTL()),
	}
	l := NewLocalizer(parser, append(base, opts...)...)

	if l.backend.Store != nil {
		return l
	}

	switch cfg.Driver {
	case DriverMemory:
		l.backend.Store = cache.NewInMemoryStore(0)
	default:
		store, err := Connect(ctx, cfg, WithConnectLogger(l.backend.Logger))
		if err != nil {
			l.backend.Logger.Error("translation cache unavailable, serving uncached", "error", err)
			return l
		}
		l.backend.Store = store
	}

	l.checkStore(ctx)
	return l
}

// checkStore warns when the store keeps no memory of its own, which means a
// client-side cache is fronting a disabled server.
func (l *Localizer) checkStore(ctx context.Context) {
	info, err := l.Info(ctx)
	if err != nil {
		l.backend.Logger.Warn("translation cache in client-only mode", "error", err)
		return
	}
	if info != nil && info.MemoryTotal == 0 && info.Endpoint != "memory" {
		l.backend.Logger.Warn("translation cache in client-only mode", "endpoint", info.Endpoint)
	}
}
