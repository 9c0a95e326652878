package verification

import (
	"crypto/rand"
	"math/big"
)

const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const (
	ukeyLength       = 12
	codeLength       = 6
	resetTokenLength = 256
)

// GenerateUKey returns the opaque 12-character user-facing identifier.
func GenerateUKey() string {
	return randomString(ukeyLength, keyAlphabet)
}

// GenerateCode returns a 6-digit numeric one-time code.
func GenerateCode() string {
	return randomString(codeLength, "0123456789")
}

// GenerateResetToken returns the long opaque token used by the
// unauthenticated password-reset flow, where the token itself is the key.
func GenerateResetToken() string {
	return randomString(resetTokenLength, keyAlphabet)
}

func randomString(length int, alphabet string) string {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the process has no entropy source;
			// nothing sensible can continue.
			panic(err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out)
}
