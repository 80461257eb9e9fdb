package signature

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/dmitrijs2005/sundaram/internal/common"
)

// secretBytes is the entropy of a session secret.
const secretBytes = 32

// Session is the credential pair minted on registration, login and password
// change. Secret is the signing key; Token is a derived, display-only value
// that also serves as a lookup hint.
type Session struct {
	Secret   string
	Token    string
	IssuedAt time.Time
}

// Issue mints a fresh session. The secret is independent of any previous one.
func Issue(now time.Time) (Session, error) {
	secret, err := common.MakeRandHexString(secretBytes)
	if err != nil {
		return Session{}, fmt.Errorf("generate session secret: %w", err)
	}
	return Session{Secret: secret, Token: DeriveToken(secret, now), IssuedAt: now}, nil
}

// DeriveToken returns hex(BLAKE2b-256(secret || decimal(unix seconds))).
func DeriveToken(secret string, now time.Time) string {
	sum := blake2b.Sum256([]byte(secret + strconv.FormatInt(now.Unix(), 10)))
	return hex.EncodeToString(sum[:])
}
