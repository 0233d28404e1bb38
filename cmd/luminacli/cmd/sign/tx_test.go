package sign

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTransaction(t *testing.T) {
	assert := assert.New(t)
	defer resetFlags()

	txFlag = "0x0a0b0c"
	transaction, err := readTransaction()
	assert.Nil(err)
	assert.Equal([]byte{0x0a, 0x0b, 0x0c}, transaction)

	dir, err := ioutil.TempDir("", "luminacli-sign")
	require.Nil(t, err)
	defer os.RemoveAll(dir)
	filePath := filepath.Join(dir, "tx.bin")
	require.Nil(t, ioutil.WriteFile(filePath, []byte{0x00, 0xff}, 0600))

	fileFlag = filePath
	_, err = readTransaction()
	assert.NotNil(err)

	txFlag = ""
	transaction, err = readTransaction()
	assert.Nil(err)
	assert.Equal([]byte{0x00, 0xff}, transaction)

	fileFlag = filepath.Join(dir, "missing")
	_, err = readTransaction()
	assert.NotNil(err)
}

// ---------------- Test Utilities ---------------- //

func resetFlags() {
	txFlag = ""
	fileFlag = ""
}
