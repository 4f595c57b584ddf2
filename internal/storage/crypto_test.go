package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	key, err := DeriveKey("passphrase")
	require.NoError(t, err)

	encoded, err := Encrypt([]byte("hello"), key)
	require.NoError(t, err)

	plaintext, err := Decrypt(encoded, key)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plaintext))
}

func TestEncrypt_UsesFreshNonce(t *testing.T) {
	key, err := DeriveKey("passphrase")
	require.NoError(t, err)

	a, err := Encrypt([]byte("same"), key)
	require.NoError(t, err)
	b, err := Encrypt([]byte("same"), key)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecrypt_Errors(t *testing.T) {
	key, err := DeriveKey("passphrase")
	require.NoError(t, err)

	_, err = Decrypt("%%%not-base64", key)
	assert.Error(t, err)

	_, err = Decrypt("AAAA", key)
	assert.ErrorIs(t, err, errSealedTooShort)

	other, err := DeriveKey("other")
	require.NoError(t, err)
	encoded, err := Encrypt([]byte("hello"), key)
	require.NoError(t, err)
	_, err = Decrypt(encoded, other)
	assert.ErrorContains(t, err, "opening sealed value")
}

func TestDeriveKey(t *testing.T) {
	a, err := DeriveKey("passphrase")
	require.NoError(t, err)
	b, err := DeriveKey("passphrase")
	require.NoError(t, err)
	c, err := DeriveKey("other")
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	_, err = DeriveKey("")
	assert.Error(t, err)
}
