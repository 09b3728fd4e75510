package signer

// Config represents signer configuration
type Config struct {
	// KeystorePath is the path to the keystore file
	KeystorePath string
	// Password is the password to decrypt the keystore
	Password string
	// PrivateKey is a hex encoded ECDSA key, used when KeystorePath is empty
	PrivateKey string
}

// IsValid checks if the config is valid
func (c *Config) IsValid() bool {
	if c.KeystorePath != "" {
		return c.Password != ""
	}
	return c.PrivateKey != ""
}
