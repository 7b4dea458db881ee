package keys

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadKeyfile reads the key written by WriteKeyfile. The file must not be
// accessible to group or others.
func ReadKeyfile(path string) (*ecdsa.PrivateKey, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if perm := info.Mode().Perm(); perm&0077 != 0 {
		return nil, fmt.Errorf("%s is accessible to group or others (%o)", path, perm)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	d, err := hex.DecodeString(strings.TrimSpace(string(buf)))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return DecodePrivateKey(d)
}

// WriteKeyfile writes the hex encoding of the key to path with user-only
// permissions, creating the parent directory if needed.
func WriteKeyfile(path string, priv *ecdsa.PrivateKey) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	d := EncodePrivateKey(priv)

	return os.WriteFile(path, []byte(hex.EncodeToString(d[:])), 0600)
}
