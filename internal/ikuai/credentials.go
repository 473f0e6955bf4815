package ikuai

import (
	"crypto/md5" // nolint:gosec // the device login endpoint expects an md5 digest.
	"encoding/base64"
	"encoding/hex"
)

// passwordSalt is prefixed to the plaintext password before it is base64 encoded.
const passwordSalt = "salt_11"

// Credentials are the login fields derived from a plaintext password.
type Credentials struct {
	Username string
	// Digest is the hex encoded md5 sum of the password, sent as passwd.
	Digest string
	// Salted is the base64 encoding of salt_11 followed by the password, sent as pass.
	Salted string
}

// DeriveCredentials returns the credential forms the login endpoint expects.
func DeriveCredentials(username, password string) Credentials {
	sum := md5.Sum([]byte(password)) // nolint:gosec // see import

	return Credentials{
		Username: username,
		Digest:   hex.EncodeToString(sum[:]),
		Salted:   base64.StdEncoding.EncodeToString([]byte(passwordSalt + password)),
	}
}
