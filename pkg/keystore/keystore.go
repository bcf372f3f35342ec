// Package keystore persists the API credential encrypted at rest. The key is
// sealed with AES-256-GCM under a key derived from a passphrase via scrypt;
// when the user configures no passphrase, a machine-local random secret is
// generated and used instead. Files are written atomically with owner-only
// permissions.
package keystore

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/scrypt"

	"scanio/pkg/serrors"
)

const (
	// fileMagic identifies a key store file.
	fileMagic = "SIOK"
	// fileVersion is bumped when the on-disk layout changes.
	fileVersion = 1

	saltSize = 16
	keySize  = 32

	// scrypt parameters for interactive use, per the package recommendation.
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// Save encrypts apiKey under the given passphrase and writes it to path,
// replacing any previous key store there.
func Save(path, passphrase, apiKey string) error {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("could not generate salt: %w", err)
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("could not generate nonce: %w", err)
	}
	sealed := gcm.Seal(nil, nonce, []byte(apiKey), nil)

	buf := make([]byte, 0, len(fileMagic)+1+len(salt)+len(nonce)+len(sealed))
	buf = append(buf, fileMagic...)
	buf = append(buf, fileVersion)
	buf = append(buf, salt...)
	buf = append(buf, nonce...)
	buf = append(buf, sealed...)

	return writeFileAtomic(path, buf)
}

// Load reads the key store at path and decrypts the API key with the given
// passphrase. A missing file yields a NOT_FOUND error; a failed decryption
// (wrong passphrase, tampered file) yields UNAUTHORIZED.
func Load(path, passphrase string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", serrors.With(serrors.ErrNotFound, "no stored API key at %s", path)
	}
	if err != nil {
		return "", fmt.Errorf("could not read key store: %w", err)
	}

	rest, ok := bytes.CutPrefix(data, []byte(fileMagic))
	if !ok || len(rest) < 1+saltSize {
		return "", fmt.Errorf("key store %s is malformed", path)
	}
	if rest[0] != fileVersion {
		return "", fmt.Errorf("unsupported key store version %d", rest[0])
	}
	rest = rest[1:]
	salt, rest := rest[:saltSize], rest[saltSize:]

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return "", err
	}
	if len(rest) < gcm.NonceSize() {
		return "", fmt.Errorf("key store %s is malformed", path)
	}
	nonce, sealed := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrUnauthorized, err, "could not decrypt key store (wrong passphrase?)")
	}

	return string(plain), nil
}

// EnsureSecret returns the machine-local secret stored at path, generating
// and persisting a fresh random one on first use.
func EnsureSecret(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if secret := strings.TrimSpace(string(data)); secret != "" {
			return secret, nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("could not read machine secret: %w", err)
	}

	raw := make([]byte, keySize)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("could not generate machine secret: %w", err)
	}
	secret := hex.EncodeToString(raw)

	if err := writeFileAtomic(path, []byte(secret+"\n")); err != nil {
		return "", err
	}

	return secret, nil
}

// newGCM derives the AES key from the passphrase and salt and returns the
// sealed-mode cipher.
func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("could not derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("could not create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("could not create GCM: %w", err)
	}

	return gcm, nil
}

// writeFileAtomic writes data to path via a temp file in the same directory
// so readers never observe a partial key store.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("could not create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("could not write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("could not restrict permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("could not replace %s: %w", path, err)
	}

	return nil
}
