package integrity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// CodeLength is the length of a hex-encoded HMAC-SHA256 code.
const CodeLength = sha256.Size * 2

// ErrEmptySecret is returned by NewSigner for a zero-length secret.
var ErrEmptySecret = errors.New("hmac secret is empty")

// Signer computes and verifies HMAC-SHA256 codes over canonical payloads.
// It is safe for concurrent use.
type Signer struct {
	secret []byte
}

// NewSigner copies secret into a new Signer.
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Signer{secret: key}, nil
}

// Sign returns the lowercase hex HMAC-SHA256 of payload.
func (s *Signer) Sign(payload []byte) string {
	return hex.EncodeToString(s.sum(payload))
}

// Verify reports whether code is exactly Sign(payload). The comparison is
// constant time. Uppercase hex does not verify, since codes double as
// dedup keys and must have a single spelling.
func (s *Signer) Verify(payload []byte, code string) bool {
	if len(code) != CodeLength {
		return false
	}
	return hmac.Equal([]byte(s.Sign(payload)), []byte(code))
}

// SignFolder canonicalizes f and signs it, returning both.
func (s *Signer) SignFolder(f Folder) (payload []byte, code string, err error) {
	payload, err = CanonicalizeFolder(f)
	if err != nil {
		return nil, "", err
	}
	return payload, s.Sign(payload), nil
}

func (s *Signer) sum(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}
