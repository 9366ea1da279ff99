package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAESKey = "0123456789abcdef0123456789abcdef"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-password", hash)

	assert.True(t, CheckPasswordHash("secret-password", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}

func TestEncryptDecryptPaymentInfo(t *testing.T) {
	t.Setenv("AES_KEY", testAESKey)

	cipherText, err := EncryptPaymentInfo("4111-1111-1111-1111")
	require.NoError(t, err)
	assert.NotEqual(t, "4111-1111-1111-1111", cipherText)

	plainText, err := DecryptPaymentInfo(cipherText)
	require.NoError(t, err)
	assert.Equal(t, "4111-1111-1111-1111", plainText)

	// 每次加密 nonce 不同，密文不應重複
	cipherText2, err := EncryptPaymentInfo("4111-1111-1111-1111")
	require.NoError(t, err)
	assert.NotEqual(t, cipherText, cipherText2)
}

func TestDecryptPaymentInfoInvalidInput(t *testing.T) {
	t.Setenv("AES_KEY", testAESKey)

	_, err := DecryptPaymentInfo("not-base64!!!")
	assert.Error(t, err)

	_, err = DecryptPaymentInfo("c2hvcnQ=")
	assert.Error(t, err)
}

func TestInitCrypto(t *testing.T) {
	t.Setenv("AES_KEY", testAESKey)
	assert.NoError(t, InitCrypto())

	t.Setenv("AES_KEY", "too-short")
	assert.Error(t, InitCrypto())

	t.Setenv("AES_KEY", "")
	assert.Error(t, InitCrypto())
}
