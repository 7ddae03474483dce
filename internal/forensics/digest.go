package forensics

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// digestChunkSize is the streaming read size; whole files are never held in
// memory for digesting.
const digestChunkSize = 64 << 10

// fileSHA256 computes the hex-encoded SHA-256 of the file's full content.
func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for digest: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, digestChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("digest file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
