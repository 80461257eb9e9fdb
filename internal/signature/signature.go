// Package signature implements the per-request signing scheme shared by the
// server and the client.
//
// A request is signed with the caller's session secret:
//
//	hex(HMAC-SHA256(secret, canonicalBody || decimal(unixSeconds)))
//
// The canonical body is the request JSON re-encoded compactly with object
// keys sorted, or "{}" when the request has no body. The server accepts a
// signature whose timestamp lies in a small trailing window before its own
// clock; see Offsets.
package signature

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// EmptyBody is the canonical form of a request without a body.
const EmptyBody = "{}"

// Offsets are the seconds added to the server clock when looking for a
// matching signature, in scan order.
var Offsets = []int64{-3, -2, -1, 0}

// CanonicalBody normalizes a raw JSON request body. Blank input yields
// EmptyBody. Numbers keep their literal text.
func CanonicalBody(raw []byte) (string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return EmptyBody, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	if dec.More() {
		return "", fmt.Errorf("decode body: trailing data")
	}
	if v == nil {
		return EmptyBody, nil
	}

	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode body: %w", err)
	}
	return string(out), nil
}

// CanonicalValue encodes v as JSON and canonicalizes the result. A nil v
// yields EmptyBody.
func CanonicalValue(v any) (string, error) {
	if v == nil {
		return EmptyBody, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode body: %w", err)
	}
	return CanonicalBody(raw)
}

// Sign computes the signature of body at unix time ts.
func Sign(secret, body string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Matches reports whether signature was produced by secret for body at ts.
// The comparison is constant time and ignores hex case.
func Matches(secret, body string, ts int64, signature string) bool {
	want := Sign(secret, body, ts)
	return hmac.Equal([]byte(want), []byte(strings.ToLower(signature)))
}
