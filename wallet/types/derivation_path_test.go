package types

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDerivationPath(t *testing.T) {
	assert := assert.New(t)

	path, err := ParseDerivationPath("44'/148'/0'")
	assert.Nil(err)
	assert.Equal(DefaultLuminaBaseDerivationPath, path)

	path, err = ParseDerivationPath("m/44h/148H/3'/7")
	assert.Nil(err)
	assert.Equal(DerivationPath{HardenedOffset + 44, HardenedOffset + 148, HardenedOffset + 3, 7}, path)
	assert.Equal("44'/148'/3'/7", path.String())

	path, err = ParseDerivationPath("2147483647")
	assert.Nil(err)
	assert.Equal(DerivationPath{HardenedOffset - 1}, path)
}

func TestParseDerivationPathInvalid(t *testing.T) {
	for _, input := range []string{
		"",
		"m/",
		"44'//0'",
		"44'/abc/0'",
		"44'/-1/0'",
		"44'/+1/0'",
		"'",
		"4294967296",
		"2147483648'",
		"2147483648",
		"44'/148'/4294967295",
		"44'/148'/0'/",
	} {
		_, err := ParseDerivationPath(input)
		assert.True(t, errors.Is(err, ErrInvalidPathFormat), "input %q: %v", input, err)
	}
}

func TestUnhardenedIndexDoesNotAliasHardened(t *testing.T) {
	assert := assert.New(t)

	_, err := ParseDerivationPath("44'/148'/2147483648")
	assert.True(errors.Is(err, ErrInvalidPathFormat))

	_, err = ParseLuminaPath("44'/148'/2147483648")
	assert.True(errors.Is(err, ErrInvalidPathFormat))
}

func TestParseDerivationPathTooLong(t *testing.T) {
	assert := assert.New(t)

	segments := make([]string, MaxPathSegments)
	for i := range segments {
		segments[i] = "1'"
	}
	path, err := ParseDerivationPath(strings.Join(segments, "/"))
	assert.Nil(err)
	assert.Equal(MaxPathSegments, len(path))

	_, err = ParseDerivationPath(strings.Join(append(segments, "1'"), "/"))
	assert.True(errors.Is(err, ErrPathTooLong))

	_, err = make(DerivationPath, MaxPathSegments+1).Bytes()
	assert.True(errors.Is(err, ErrPathTooLong))
}

func TestDerivationPathBytes(t *testing.T) {
	require := require.New(t)

	buf, err := DefaultLuminaBaseDerivationPath.Bytes()
	require.Nil(err)
	require.Equal([]byte{
		0x03,
		0x80, 0x00, 0x00, 0x2c,
		0x80, 0x00, 0x00, 0x94,
		0x80, 0x00, 0x00, 0x00,
	}, buf)
}

func TestDerivationPathRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, size := range []int{1, 2, 5, 10, 100, MaxPathSegments} {
		original := make(DerivationPath, size)
		for i := range original {
			original[i] = rng.Uint32()
		}

		encoded, err := original.Bytes()
		require.Nil(t, err)

		parsed, err := ParseDerivationPath(original.String())
		require.Nil(t, err)
		assert.Equal(t, original, parsed, fmt.Sprintf("size %d", size))
		assert.Equal(t, original, decodePath(t, encoded))
	}
}

func TestCheckLuminaPath(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(CheckLuminaPath(DefaultLuminaBaseDerivationPath))

	for _, input := range []string{"44'/148'/0'/1", "44'/60'/0'", "148'/44'", "44'", "44/148/0"} {
		_, err := ParseLuminaPath(input)
		assert.True(errors.Is(err, ErrInvalidAccountPath), "input %q: %v", input, err)
	}

	_, err := ParseLuminaPath("44'/148'/x")
	assert.True(errors.Is(err, ErrInvalidPathFormat))

	path, err := ParseLuminaPath("m/44'/148'/12'")
	assert.Nil(err)
	assert.Equal(DerivationPath{LuminaPurpose, LuminaCoinType, HardenedOffset + 12}, path)
}

// ---------------- Test Utilities ---------------- //

func decodePath(t *testing.T, buf []byte) DerivationPath {
	require.True(t, len(buf) > 0)
	count := int(buf[0])
	require.Equal(t, 1+4*count, len(buf))

	path := make(DerivationPath, count)
	for i := range path {
		path[i] = binary.BigEndian.Uint32(buf[1+4*i:])
	}
	return path
}
