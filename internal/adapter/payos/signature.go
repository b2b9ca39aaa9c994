package payos

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Sign computes the request integrity code the provider verifies: field
// names sorted lexicographically, joined as key=value pairs with '&',
// HMAC-SHA256 under the checksum key, hex encoded. The construction must
// stay bit-exact to interoperate with the real gateway.
func Sign(checksumKey string, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}

	mac := hmac.New(sha256.New, []byte(checksumKey))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}
