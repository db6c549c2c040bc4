/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package canon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalizeJSON(t *testing.T) {
	t.Run("sorts object keys", func(t *testing.T) {
		out, err := CanonicalizeJSON([]byte(`{"b":1,"a":2}`))
		require.NoError(t, err)
		require.Equal(t, `{"a":2,"b":1}`, string(out))
	})

	t.Run("is stable across struct field order", func(t *testing.T) {
		type doc struct {
			B int `json:"b"`
			A int `json:"a"`
		}

		out, err := MarshalCanonical(doc{B: 1, A: 2})
		require.NoError(t, err)
		require.Equal(t, `{"a":2,"b":1}`, string(out))
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		_, err := CanonicalizeJSON([]byte(`{not json`))
		require.Error(t, err)
	})
}

func TestHashMultibase(t *testing.T) {
	h1, err := HashMultibase([]byte("hello"))
	require.NoError(t, err)
	require.NotEmpty(t, h1)

	h2, err := HashMultibase([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	h3, err := HashMultibase([]byte("world"))
	require.NoError(t, err)
	require.NotEqual(t, h1, h3)

	ok, err := VerifyHashMultibase([]byte("hello"), h1)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyHashMultibase([]byte("hello"), h3)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = DecodeHashMultibase(h1)
	require.NoError(t, err)
}

func TestMultikeyRoundTrip(t *testing.T) {
	pub := make([]byte, 32)
	for i := range pub {
		pub[i] = byte(i)
	}

	mk := Ed25519Multikey(pub)
	require.True(t, mk[:1] == "z")

	got, err := ParseEd25519Multikey(mk)
	require.NoError(t, err)
	require.Equal(t, pub, got)

	require.Equal(t, "did:key:"+mk+"#"+mk, DIDKeyID(mk))

	_, _, err = ParseMultikey("not-a-multikey")
	require.Error(t, err)
}
