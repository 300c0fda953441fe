package ledger

import (
	"crypto/subtle"
	"encoding/hex"
	"strconv"

	"lukechampine.com/blake3"
)

const signatureContext = "gipf-arena action signature v1"

// Sign is the keyed digest a client attaches to an action: BLAKE3 keyed by
// a key derived from token, over decimal(seq) || payload || token.
func Sign(seq int64, payload, token string) string {
	key := make([]byte, 32)
	blake3.DeriveKey(key, signatureContext, []byte(token))
	h := blake3.New(32, key)
	h.Write([]byte(strconv.FormatInt(seq, 10)))
	h.Write([]byte(payload))
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

func Verify(seq int64, payload, token, signature string) bool {
	want := Sign(seq, payload, token)
	return subtle.ConstantTimeCompare([]byte(want), []byte(signature)) == 1
}
