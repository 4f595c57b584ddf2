// Package device holds identity that belongs to the install rather than the
// logged-in user.
package device

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nasti/booking-client/internal/storage"
)

const installationIDKey = "installation_id"

// InstallationID returns the persisted installation id, generating and saving
// one on first use. prefs must not be the session namespace, or logging out
// would rotate the id.
func InstallationID(prefs storage.Prefs) (string, error) {
	id, ok, err := prefs.GetString(installationIDKey)
	if err != nil {
		return "", fmt.Errorf("failed to read installation id: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}

	id = uuid.New().String()
	if err := prefs.PutString(installationIDKey, id); err != nil {
		return "", fmt.Errorf("failed to save installation id: %w", err)
	}
	return id, nil
}
