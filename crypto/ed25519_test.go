package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ed25519"
)

func TestEncodePublicKey(t *testing.T) {
	assert := assert.New(t)

	address, err := EncodePublicKey(make([]byte, PublicKeySize))
	assert.Nil(err)
	assert.Equal("GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF", address)

	raw := make([]byte, PublicKeySize)
	for i := range raw {
		raw[i] = byte(i)
	}
	address, err = EncodePublicKey(raw)
	assert.Nil(err)
	assert.Equal("GAAACAQDAQCQMBYIBEFAWDANBYHRAEISCMKBKFQXDAMRUGY4DUPB7JZX", address)

	decoded, err := decodePublicKey(address)
	assert.Nil(err)
	assert.Equal(raw, decoded)

	_, err = EncodePublicKey(raw[:31])
	assert.True(errors.Is(err, ErrInvalidPublicKey))
}

func TestDecodePublicKeyInvalid(t *testing.T) {
	assert := assert.New(t)

	for _, address := range []string{
		"",
		"not-base32!",
		"GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHG", // checksum
		"GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",     // length
		"SAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF", // version byte
	} {
		_, err := decodePublicKey(address)
		assert.True(errors.Is(err, ErrInvalidAddress), "address %q: %v", address, err)
	}
}

func TestVerifySignature(t *testing.T) {
	assert := assert.New(t)

	pub, priv, err := ed25519.GenerateKey(bytes.NewReader(bytes.Repeat([]byte{7}, 64)))
	require.Nil(t, err)

	message := []byte("via lumina")
	signature := ed25519.Sign(priv, message)

	assert.True(VerifySignature(message, signature, pub))
	assert.False(VerifySignature([]byte("via luminA"), signature, pub))
	assert.False(VerifySignature(message, signature[:63], pub))
	assert.False(VerifySignature(message, signature, pub[:31]))

	tampered := append([]byte(nil), signature...)
	tampered[0] ^= 0xff
	assert.False(VerifySignature(message, tampered, pub))
}

func TestHash(t *testing.T) {
	assert := assert.New(t)

	digest := Hash([]byte("abc"))
	assert.Equal(HashSize, len(digest))
	assert.Equal("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hex.EncodeToString(digest))
}
