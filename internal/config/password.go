package config

import (
	"fmt"
	"strings"

	"github.com/billgraziano/dpapi"
)

// Launcher passwords are stored DPAPI-encrypted with this prefix. A value
// without the prefix is treated as plaintext (hand-edited config) and gets
// encrypted on the next save.
const encryptedPrefix = "dpapi:"

func encryptPassword(plain string) (string, error) {
	if strings.HasPrefix(plain, encryptedPrefix) {
		return plain, nil
	}
	enc, err := dpapi.Encrypt(plain)
	if err != nil {
		return "", fmt.Errorf("dpapi encrypt: %w", err)
	}
	return encryptedPrefix + enc, nil
}

// PlainPassword returns the launcher password ready to paste into the
// login form.
func (l LauncherCfg) PlainPassword() (string, error) {
	return decryptPassword(l.Password)
}

func decryptPassword(stored string) (string, error) {
	if !strings.HasPrefix(stored, encryptedPrefix) {
		return stored, nil
	}
	plain, err := dpapi.Decrypt(strings.TrimPrefix(stored, encryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("dpapi decrypt: %w", err)
	}
	return plain, nil
}
