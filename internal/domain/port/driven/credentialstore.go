package driven

import (
	"context"
	"errors"

	"github.com/storydesk/storydesk/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by CredentialStore operations when
// STORYDESK_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set STORYDESK_SECRET_KEY")

// CredentialStore defines the driven port for encrypted API key persistence.
// The adapter layer is responsible for encryption/decryption; this interface
// operates on plaintext values at the domain boundary.
type CredentialStore interface {
	// Set stores or replaces the API key for the given identifier.
	// Returns ErrEncryptionKeyNotSet if the adapter was constructed
	// without an encryption key.
	Set(ctx context.Context, id int64, apiKey string) error

	// Get retrieves the plaintext API key for the given identifier.
	// Returns ("", nil) if no key is stored for that identifier.
	// Returns ErrEncryptionKeyNotSet if the adapter was constructed
	// without an encryption key.
	Get(ctx context.Context, id int64) (string, error)

	// List returns all stored credentials with decrypted values, ordered
	// by identifier. Administrative surface only; not exposed over the
	// bridge.
	List(ctx context.Context) ([]model.Credential, error)

	// Delete removes the credential for the given identifier. Deleting an
	// identifier that was never set is not an error.
	Delete(ctx context.Context, id int64) error
}
