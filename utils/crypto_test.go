package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Setenv("DATA_ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")

	ciphertext, err := EncryptString("IT12345678901")
	require.NoError(t, err)
	assert.NotEqual(t, "IT12345678901", ciphertext)

	plain, err := DecryptString(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "IT12345678901", plain)
}

func TestEncryptString_EmptyStaysEmpty(t *testing.T) {
	t.Setenv("DATA_ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")

	ciphertext, err := EncryptString("")
	require.NoError(t, err)
	assert.Empty(t, ciphertext)

	plain, err := DecryptString("")
	require.NoError(t, err)
	assert.Empty(t, plain)
}

func TestEncrypt_RequiresKey(t *testing.T) {
	t.Setenv("DATA_ENCRYPTION_KEY", "too-short")

	_, err := Encrypt([]byte("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 characters")
}

func TestDecrypt_RejectsGarbage(t *testing.T) {
	t.Setenv("DATA_ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")

	_, err := DecryptString("bm90LXJlYWwtY2lwaGVydGV4dA==")
	require.Error(t, err)
}

func TestMaskString_MasksItalianIdentifiers(t *testing.T) {
	old := IsProduction
	IsProduction = true
	defer func() { IsProduction = old }()

	masked := MaskString("invoice for IT12345678901 client RSSMRA85T10A562S at mario@example.it")

	assert.NotContains(t, masked, "12345678901")
	assert.NotContains(t, masked, "RSSMRA85T10A562S")
	assert.NotContains(t, masked, "mario@example.it")
}

func TestMaskString_NoMaskingInDevelopment(t *testing.T) {
	old := IsProduction
	IsProduction = false
	defer func() { IsProduction = old }()

	input := "invoice for IT12345678901"
	assert.Equal(t, input, MaskString(input))
}
