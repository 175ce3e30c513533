package keychain

import (
	"crypto/sha256"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
)

// HostFingerprint produces a deterministic byte string from environment
// signals of the host. It exists solely to decrypt legacy format-version-1
// wallet records, whose encryption keys were derived from such a fingerprint
// instead of a user password. It must never be used for new encryptions:
// the fingerprint changes when the host environment changes, silently
// orphaning the wallet.
type HostFingerprint struct {
	// extra lets callers mix in client-specific signals (a rendering-surface
	// hash, user-agent string, screen geometry) forwarded from the host
	// application.
	extra []string
}

// NewHostFingerprint creates a fingerprint provider. Additional host signals
// may be supplied; they are folded into the digest in sorted order so callers
// don't have to care about ordering.
func NewHostFingerprint(extra ...string) *HostFingerprint {
	sorted := make([]string, len(extra))
	copy(sorted, extra)
	sort.Strings(sorted)
	return &HostFingerprint{extra: sorted}
}

// Fingerprint returns the deterministic fingerprint bytes for this host.
func (h *HostFingerprint) Fingerprint() []byte {
	hostname, _ := os.Hostname()

	signals := []string{
		hostname,
		runtime.GOOS,
		runtime.GOARCH,
		localeSignal(),
	}
	signals = append(signals, h.extra...)

	digest := sha256.Sum256([]byte(strings.Join(signals, "|")))
	return []byte(fmt.Sprintf("%x", digest))
}

// localeSignal reads the host locale the way legacy clients did, falling back
// through the usual environment variables.
func localeSignal() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "en-US"
}
