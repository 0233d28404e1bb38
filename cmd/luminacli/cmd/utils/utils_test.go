package utils

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thetatoken/lumina/wallet/types"
)

func TestDecodeHex(t *testing.T) {
	assert := assert.New(t)

	data, err := DecodeHex("0xdeadBEEF")
	assert.Nil(err)
	assert.Equal([]byte{0xde, 0xad, 0xbe, 0xef}, data)

	data, err = DecodeHex("  de ad\nbe ef \n")
	assert.Nil(err)
	assert.Equal([]byte{0xde, 0xad, 0xbe, 0xef}, data)

	_, err = DecodeHex("abc")
	assert.NotNil(err)
	_, err = DecodeHex("zz")
	assert.NotNil(err)
	_, err = DecodeHex("0x")
	assert.NotNil(err)
}

func TestReadHex(t *testing.T) {
	data, err := ReadHex(strings.NewReader("0102ff\n"))
	assert.Nil(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0xff}, data)
}

func TestCheckPath(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(CheckPath("44'/148'/0'"))
	assert.True(errors.Is(CheckPath("44'/60'/0'"), types.ErrInvalidAccountPath))
	assert.True(errors.Is(CheckPath("44'/148'/2147483648"), types.ErrInvalidPathFormat))
}

func TestOutputSignature(t *testing.T) {
	assert := assert.New(t)
	dir, err := ioutil.TempDir("", "luminacli")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	result := &types.SignatureResult{Signature: []byte{0xfb, 0xff, 0x01}}
	assert.Equal("Signature (hex):    fbff01\nSignature (base64): +/8B", FormatSignature(result))

	outPath := filepath.Join(dir, "tx.sig")
	require.Nil(t, OutputSignature(result, outPath))
	content, err := ioutil.ReadFile(outPath)
	require.Nil(t, err)
	assert.Equal(hex.EncodeToString(result.Signature)+"\n", string(content))

	assert.Nil(OutputSignature(result, ""))
}
