// Package secrets manages the age key pair used to encrypt task backups and
// the .env entries that point at it.
package secrets

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"github.com/dohr-michael/taskboard/internal/config"
)

// RecipientEnv names the .env entry holding the backup recipient.
const RecipientEnv = "TASKBOARD_BACKUP_RECIPIENT"

// ErrNoIdentity is returned when a key file holds no X25519 identity.
var ErrNoIdentity = errors.New("no age identity found")

// KeyPath returns the default age key file path: $TASKBOARD_PATH/.age-key.
func KeyPath() string {
	return filepath.Join(config.TaskboardPath(), ".age-key")
}

// GenerateIdentity creates an X25519 key pair at path (mode 0600) and returns
// its public recipient. An existing key file is kept and its recipient returned.
func GenerateIdentity(path string) (string, bool, error) {
	if id, err := LoadIdentity(path); err == nil {
		return id.Recipient().String(), false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", false, err
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", false, fmt.Errorf("generate age identity: %w", err)
	}
	recipient := identity.Recipient().String()

	content := fmt.Sprintf("# created by taskboard keygen\n# public key: %s\n%s\n", recipient, identity.String())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("create key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", false, fmt.Errorf("write age key: %w", err)
	}
	return recipient, true, nil
}

// LoadIdentity reads the first X25519 identity from path.
func LoadIdentity(path string) (*age.X25519Identity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open age key: %w", err)
	}
	defer f.Close()

	identities, err := age.ParseIdentities(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, id := range identities {
		if x, ok := id.(*age.X25519Identity); ok {
			return x, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", path, ErrNoIdentity)
}

// ParseRecipient parses an "age1..." public key.
func ParseRecipient(s string) (*age.X25519Recipient, error) {
	r, err := age.ParseX25519Recipient(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid backup recipient: %w", err)
	}
	return r, nil
}

// EncryptTo wraps w so that everything written is encrypted to recipient.
// The returned writer must be closed to flush the final chunk.
func EncryptTo(w io.Writer, recipient age.Recipient) (io.WriteCloser, error) {
	wc, err := age.Encrypt(w, recipient)
	if err != nil {
		return nil, fmt.Errorf("age encrypt: %w", err)
	}
	return wc, nil
}

// DecryptFrom returns a reader yielding the plaintext of r.
func DecryptFrom(r io.Reader, identity age.Identity) (io.Reader, error) {
	pr, err := age.Decrypt(r, identity)
	if err != nil {
		return nil, fmt.Errorf("age decrypt: %w", err)
	}
	return pr, nil
}
