package item

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// uidLen is the stored identifier length in hex characters. Changing it (or
// the concatenation below) invalidates every previously stored identity.
const uidLen = 16

// UID derives the stable deduplication key for an opportunity from the
// tuple (group, source, title, link). It is the sole dedup mechanism: equal
// tuples always produce equal uids, across runs and process restarts.
func UID(group, source, title, link string) string {
	return shortHash(strings.Join([]string{group, source, title, link}, "|"))
}

// LinkUID derives the identity of a registered link from (url, group), so
// re-adding the same pair is idempotent at the identity layer.
func LinkUID(url, group string) string {
	return shortHash(url + "|" + group)
}

func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:uidLen]
}
