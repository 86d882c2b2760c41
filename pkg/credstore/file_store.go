package credstore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/hkdf"
)

const (
	// SecretSize is the required length of the file store secret
	SecretSize = 32 // 256 bits for AES-256

	// saltInfo provides domain separation for HKDF key derivation
	saltInfo = "sessionkit-credstore-v1"
)

// FileStore implements Store as a single AES-256-GCM sealed JSON file.
// The whole key-value map is loaded, modified and rewritten on every
// mutation; writes go through a temp file followed by a rename so a crash
// never leaves a truncated store behind.
type FileStore struct {
	mu   sync.Mutex
	path string
	key  []byte
}

// NewFileStore creates a file-backed credential store at path. The secret
// must be exactly SecretSize bytes; the sealing key is derived from it with
// HKDF-SHA256 so the raw secret never touches the cipher directly.
func NewFileStore(path string, secret []byte) (*FileStore, error) {
	if len(secret) != SecretSize {
		return nil, ErrInvalidSecret
	}

	key, err := deriveKey(secret)
	if err != nil {
		return nil, err
	}

	return &FileStore{
		path: path,
		key:  key,
	}, nil
}

// GenerateSecret creates a new random secret suitable for NewFileStore
func GenerateSecret() ([]byte, error) {
	secret := make([]byte, SecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return secret, nil
}

// Get retrieves the value stored under key, or "" if absent.
// An unreadable or undecryptable store file surfaces ErrUnavailable.
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

// Set stores value under key. A corrupt store file is recreated from
// scratch rather than propagated: the sealed blob is unusable anyway and
// refusing the write would wedge every future login on this device.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		values = make(map[string]string)
	}
	values[key] = value
	return s.save(values)
}

// Delete removes key; absent keys and an absent store file are ignored
func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

// load reads and unseals the store file. A missing file is an empty store.
func (s *FileStore) load() (map[string]string, error) {
	sealed, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	plaintext, err := s.unseal(sealed)
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(plaintext, &values); err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	return values, nil
}

// save seals and atomically replaces the store file
func (s *FileStore) save(values map[string]string) error {
	plaintext, err := json.Marshal(values)
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}

	sealed, err := s.seal(plaintext)
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

// seal encrypts data with AES-256-GCM, prepending the nonce to the
// ciphertext so the blob is self-contained.
func (s *FileStore) seal(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return aesGCM.Seal(nonce, nonce, data, nil), nil
}

// unseal decrypts a nonce-prefixed AES-256-GCM blob
func (s *FileStore) unseal(sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := aesGCM.NonceSize()
	if len(sealed) < nonceSize {
		return nil, errors.New("sealed blob too short")
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	return aesGCM.Open(nil, nonce, ciphertext, nil)
}

// deriveKey expands the user secret into the sealing key using HKDF-SHA256
func deriveKey(secret []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, nil, []byte(saltInfo))

	key := make([]byte, SecretSize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}
