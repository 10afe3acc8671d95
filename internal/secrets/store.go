package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Store is a per-user secret file (0600) with AES-GCM obfuscation keyed on the
// OS user. It keeps database passwords out of the TOML config; it is not a
// replacement for a real keychain.
type Store struct {
	Dir string
}

const storeFile = "passwords.json"

type storeData struct {
	Secrets map[string]string `json:"secrets"` // name -> base64(ciphertext)
}

// DefaultStore lives under the user config dir.
func DefaultStore() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &Store{Dir: filepath.Join(dir, "mm2ledger")}, nil
}

func (s *Store) Set(name, value string) error {
	if name = norm(name); name == "" {
		return fmt.Errorf("secret name required")
	}
	path, err := s.path()
	if err != nil {
		return err
	}
	sd, err := load(path)
	if err != nil {
		return err
	}
	if sd.Secrets == nil {
		sd.Secrets = map[string]string{}
	}
	ct, err := encrypt([]byte(value))
	if err != nil {
		return err
	}
	sd.Secrets[name] = base64.StdEncoding.EncodeToString(ct)
	return save(path, sd)
}

func (s *Store) Get(name string) (string, error) {
	if name = norm(name); name == "" {
		return "", fmt.Errorf("secret name required")
	}
	path, err := s.path()
	if err != nil {
		return "", err
	}
	sd, err := load(path)
	if err != nil {
		return "", err
	}
	enc, ok := sd.Secrets[name]
	if !ok {
		return "", fmt.Errorf("%w: no stored secret named %q.\nStore one with: mm2ledger secret set %s", ErrMissingSecret, name, name)
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode secret %q: %w", name, err)
	}
	pt, err := decrypt(raw)
	if err != nil {
		return "", fmt.Errorf("decrypt secret %q: %w", name, err)
	}
	return string(pt), nil
}

func (s *Store) Delete(name string) error {
	path, err := s.path()
	if err != nil {
		return err
	}
	sd, err := load(path)
	if err != nil {
		return err
	}
	delete(sd.Secrets, norm(name))
	return save(path, sd)
}

func (s *Store) path() (string, error) {
	if s == nil || s.Dir == "" {
		return "", fmt.Errorf("secret store directory not configured")
	}
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, storeFile), nil
}

func load(path string) (storeData, error) {
	var sd storeData
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return storeData{}, nil
		}
		return sd, err
	}
	if err := json.Unmarshal(data, &sd); err != nil {
		return sd, fmt.Errorf("parse %s: %w", path, err)
	}
	return sd, nil
}

func save(path string, sd storeData) error {
	data, err := json.MarshalIndent(sd, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func masterKey() []byte {
	base := fmt.Sprintf("mm2ledger-%s-%s", runtime.GOOS, os.Getenv("USER"))
	sum := sha256.Sum256([]byte(base))
	return sum[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
