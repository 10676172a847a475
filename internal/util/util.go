package util

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// CopyWithChecksum copies src to dst and returns the number of bytes written
// and the sha256 of the copied content.
func CopyWithChecksum(dst io.Writer, src io.Reader) (int64, string, error) {
	hasher := sha256.New()

	n, err := io.Copy(io.MultiWriter(dst, hasher), src)
	if err != nil {
		return n, "", err
	}

	return n, hex.EncodeToString(hasher.Sum(nil)), nil
}
