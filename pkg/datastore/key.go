// Package datastore holds the store-facing primitives shared by repositories:
// opaque web-safe keys and equality-filter queries.
package datastore

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Key identifies one record of a kind. Callers only ever see its web-safe encoding.
type Key struct {
	Kind string
	Name string
}

var errMalformedKey = errors.New("malformed datastore key")

// NewKey returns a key with a freshly allocated name, the way the store assigns ids on insert.
func NewKey(kind string) Key {
	return Key{Kind: kind, Name: uuid.NewString()}
}

// WebSafeString encodes the key as an unpadded base64url token.
func (k Key) WebSafeString() string {
	return base64.RawURLEncoding.EncodeToString([]byte(k.Kind + "/" + k.Name))
}

// DecodeKey parses a token produced by WebSafeString and checks it belongs to kind.
func DecodeKey(kind, token string) (Key, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return Key{}, errMalformedKey
	}
	gotKind, name, ok := strings.Cut(string(raw), "/")
	if !ok || gotKind != kind {
		return Key{}, errMalformedKey
	}
	if _, err := uuid.Parse(name); err != nil {
		return Key{}, errMalformedKey
	}
	return Key{Kind: kind, Name: name}, nil
}

// KeyOrNil resolves a token to a key, returning nil for anything unresolvable.
func KeyOrNil(kind, token string) *Key {
	key, err := DecodeKey(kind, token)
	if err != nil {
		return nil
	}
	return &key
}
