// Package l10ncache serves gettext translation catalogs out of a Redis-compatible
// store instead of re-parsing .mo and script-translation JSON files on every
// request.
//
// Catalogs are addressed by a deterministic key derived from the text domain,
// locale, source file and payload kind. A lookup reads through the store; on a
// miss the source file is parsed, and the result is written back so the next
// request takes the fast path.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/l10ncache"
//	    "github.com/ZaguanLabs/l10ncache/mo"
//	)
//
//	func main() {
//	    ctx := context.Background()
//	    cfg := l10ncache.DefaultConfig()
//	    cfg.Host = "127.0.0.1"
//
//	    // Boot never fails the host: an unreachable store yields an uncached localizer.
//	    loc := l10ncache.Boot(ctx, cfg, mo.NewParser())
//	    defer loc.Close()
//
//	    if loc.OnLookupMO(ctx, "my-plugin", "/srv/wp/languages/plugins/my-plugin-fr_FR.mo", "fr_FR") {
//	        fmt.Println(loc.Translate("my-plugin", "Settings", "")) // Réglages
//	    }
//	}
package l10ncache
