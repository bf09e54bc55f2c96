package datastore

import (
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestKeyRoundTrip(t *testing.T) {
	key := NewKey("FeedbackQuestion")

	decoded, err := DecodeKey("FeedbackQuestion", key.WebSafeString())
	require.NoError(t, err)
	assert.Equal(t, key, decoded)
	assert.NotContains(t, key.WebSafeString(), "=")
}

func TestDecodeKeyRejectsMalformed(t *testing.T) {
	otherKind := Key{Kind: "Instructor", Name: uuid.NewString()}.WebSafeString()
	notUUID := base64.RawURLEncoding.EncodeToString([]byte("FeedbackQuestion/abc"))

	for name, token := range map[string]string{
		"empty":      "",
		"not base64": "***",
		"no kind":    base64.RawURLEncoding.EncodeToString([]byte("abc")),
		"other kind": otherKind,
		"bad name":   notUUID,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeKey("FeedbackQuestion", token)
			assert.Error(t, err)
			assert.Nil(t, KeyOrNil("FeedbackQuestion", token))
		})
	}
}

func TestKeyRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		kind := rapid.StringMatching(`[A-Za-z]{1,20}`).Draw(rt, "kind")
		name := uuid.New().String()

		got, err := DecodeKey(kind, Key{Kind: kind, Name: name}.WebSafeString())
		if err != nil {
			rt.Fatalf("decode %s/%s: %v", kind, name, err)
		}
		if got.Name != name || got.Kind != kind {
			rt.Fatalf("round trip mismatch: %+v", got)
		}
	})
}
