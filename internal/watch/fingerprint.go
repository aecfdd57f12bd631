package watch

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sync"
)

// Fingerprint remembers the content hash of files so that writes which do
// not change content are not recompiled.
type Fingerprint struct {
	mu     sync.Mutex
	hashes map[string]string
}

// NewFingerprint creates an empty fingerprint
func NewFingerprint() *Fingerprint {
	return &Fingerprint{hashes: make(map[string]string)}
}

// HashFile computes a SHA-256 hash of the file contents
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashContent computes a SHA-256 hash of the given content
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Changed hashes path and reports whether the hash differs from the one
// recorded by the previous call. The first call for a path reports true.
func (f *Fingerprint) Changed(path string) (bool, error) {
	hash, err := HashFile(path)
	if err != nil {
		return false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hashes[path] == hash {
		return false, nil
	}
	f.hashes[path] = hash
	return true, nil
}
