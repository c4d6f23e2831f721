package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	KeyringService = "jobportal"
	// EnvServiceToken overrides the keychain, for headless hosts without one.
	EnvServiceToken = "PORTAL_SERVICE_TOKEN"
)

var ErrNoToken = errors.New("service token not found (set it in keychain or via " + EnvServiceToken + ")")

// ServiceAccount is the keychain account holding the API token for baseURL.
func ServiceAccount(baseURL string) string {
	return "jobportal:api:" + strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// GetServiceToken prefers the environment, then the OS keychain.
func GetServiceToken(account string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvServiceToken)); v != "" {
		return v, nil
	}
	if strings.TrimSpace(account) == "" {
		return "", ErrNoToken
	}
	tok, err := keyring.Get(KeyringService, account)
	if err != nil || strings.TrimSpace(tok) == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

func SetServiceToken(account, token string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, account, token)
}

func DeleteServiceToken(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	err := keyring.Delete(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
