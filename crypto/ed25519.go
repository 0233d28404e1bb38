package crypto

import (
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"
)

// ----------------------- Ed25519 Codec ----------------------- //

const (
	// PublicKeySize is the size of a raw Ed25519 public key
	PublicKeySize = ed25519.PublicKeySize

	// SignatureSize is the size of a raw Ed25519 signature
	SignatureSize = ed25519.SignatureSize

	// HashSize is the size of the digest produced by Hash
	HashSize = sha256.Size

	// versionByteAccountID prefixes encoded account public keys, it renders as 'G'
	versionByteAccountID byte = 6 << 3
)

var (
	// ErrInvalidPublicKey is returned for raw keys of the wrong size
	ErrInvalidPublicKey = errors.New("invalid Ed25519 public key")

	// ErrInvalidAddress is returned when an encoded address fails to decode
	ErrInvalidAddress = errors.New("invalid account address")
)

var strkeyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// EncodePublicKey converts a raw Ed25519 public key into its display form:
// base32(version || key || crc16(version || key)).
func EncodePublicKey(raw []byte) (string, error) {
	if len(raw) != PublicKeySize {
		return "", errors.Wrapf(ErrInvalidPublicKey, "expected %d bytes, got %d", PublicKeySize, len(raw))
	}
	payload := make([]byte, 0, 1+PublicKeySize+2)
	payload = append(payload, versionByteAccountID)
	payload = append(payload, raw...)

	var checksum [2]byte
	binary.LittleEndian.PutUint16(checksum[:], crc16XModem(payload))
	payload = append(payload, checksum[:]...)

	return strkeyEncoding.EncodeToString(payload), nil
}

// decodePublicKey is the inverse of EncodePublicKey.
func decodePublicKey(address string) ([]byte, error) {
	decoded, err := strkeyEncoding.DecodeString(address)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidAddress, err.Error())
	}
	if len(decoded) != 1+PublicKeySize+2 {
		return nil, errors.Wrapf(ErrInvalidAddress, "unexpected length %d", len(decoded))
	}
	if decoded[0] != versionByteAccountID {
		return nil, errors.Wrapf(ErrInvalidAddress, "unexpected version byte 0x%02x", decoded[0])
	}
	payload, checksum := decoded[:1+PublicKeySize], decoded[1+PublicKeySize:]
	if binary.LittleEndian.Uint16(checksum) != crc16XModem(payload) {
		return nil, errors.Wrap(ErrInvalidAddress, "checksum mismatch")
	}
	return append([]byte(nil), payload[1:]...), nil
}

// VerifySignature checks an Ed25519 signature of message under the raw
// public key. Malformed keys or signatures simply fail verification.
func VerifySignature(message, signature, publicKey []byte) bool {
	if len(publicKey) != PublicKeySize || len(signature) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}

// Hash returns the SHA-256 digest the device signs in hash signing mode.
func Hash(data []byte) []byte {
	digest := sha256.Sum256(data)
	return digest[:]
}

func crc16XModem(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
