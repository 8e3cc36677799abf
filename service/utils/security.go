package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
)

const tokenCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ShareTokenLength is the length of minted share link tokens.
const ShareTokenLength = 48

// GenerateRandomString generates a random string of specified length using
// a cryptographically secure source.
func GenerateRandomString(length int) string {
	result := make([]byte, length)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(tokenCharset))))
		result[i] = tokenCharset[num.Int64()]
	}
	return string(result)
}

// HashToken returns the hex encoded SHA-256 of a share token. Tokens are
// always resolved by this hash rather than by their raw value.
func HashToken(token string) string {
	hasher := sha256.New()
	hasher.Write([]byte(token))
	return hex.EncodeToString(hasher.Sum(nil))
}
