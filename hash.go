package l10ncache

import (
	"crypto/md5" // #nosec G501 - cache addressing only, no security relevance
	"math/big"
	"strings"
)

// pathHashLength is the number of base-32 characters kept from the path digest.
const pathHashLength = 12

// PathHash returns a short, stable digest of path: the MD5 sum rendered in
// base 32 and truncated to 12 characters.
func PathHash(path string) string {
	sum := md5.Sum([]byte(path)) // #nosec G401
	encoded := new(big.Int).SetBytes(sum[:]).Text(32)
	if len(encoded) < pathHashLength {
		encoded = strings.Repeat("0", pathHashLength-len(encoded)) + encoded
	}
	return encoded[:pathHashLength]
}

// KeyDeriver maps (kind, domain, locale, file) to a store key.
type KeyDeriver struct {
	Prefix      string // Optional namespace in front of every key
	InstallRoot string // Absolute prefix stripped from paths before hashing
}

// Derive returns "{prefix}:translations:{domain}-{locale}-{hash}-{kind}".
// The same inputs always give the same key; two files for the same domain and
// locale get different keys because the path is part of the hash.
func (d KeyDeriver) Derive(kind Kind, domain, locale, path string) string {
	hash := PathHash(d.NormalizePath(path))
	return d.Compose(domain + "-" + locale + "-" + hash + "-" + string(kind))
}

// NormalizePath strips the install root so keys are stable across hosts that
// share a relative layout.
func (d KeyDeriver) NormalizePath(path string) string {
	if d.InstallRoot == "" {
		return path
	}
	return strings.TrimPrefix(path, d.InstallRoot)
}

// Compose namespaces a raw key under the prefix and the translations segment.
func (d KeyDeriver) Compose(raw string) string {
	raw = keyReplacer.Replace(raw)

	var b strings.Builder
	if d.Prefix != "" {
		b.WriteString(d.Prefix)
		b.WriteByte(':')
	}
	b.WriteString("translations:")
	b.WriteString(raw)

	return strings.Trim(strings.ToLower(b.String()), ":")
}

var keyReplacer = strings.NewReplacer(":", "-", " ", "-")
