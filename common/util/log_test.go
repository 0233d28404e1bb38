package util

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thetatoken/lumina/common"
)

func TestInitLogLevel(t *testing.T) {
	assert := assert.New(t)
	defer resetLog()

	viper.Set(common.CfgLogLevel, "debug")
	assert.Nil(InitLog())
	assert.Equal(log.DebugLevel, log.GetLevel())

	viper.Set(common.CfgLogLevel, "warn")
	assert.Nil(InitLog())
	assert.Equal(log.WarnLevel, log.GetLevel())

	viper.Set(common.CfgLogLevel, "chatty")
	assert.NotNil(InitLog())
	assert.Equal(log.WarnLevel, log.GetLevel())
}

func TestInitLogFile(t *testing.T) {
	assert := assert.New(t)
	defer resetLog()

	dir, err := ioutil.TempDir("", "lumina-log")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	filePath := filepath.Join(dir, "luminacli.log")
	viper.Set(common.CfgLogLevel, "info")
	viper.Set(common.CfgLogFile, filePath)
	require.Nil(t, InitLog())

	log.WithFields(log.Fields{"prefix": "test"}).Info("written to the log file")
	content, err := ioutil.ReadFile(filePath)
	require.Nil(t, err)
	assert.Contains(string(content), "written to the log file")
	assert.Contains(string(content), "prefix=test")
}

// ---------------- Test Utilities ---------------- //

func resetLog() {
	viper.Set(common.CfgLogLevel, "info")
	viper.Set(common.CfgLogFile, "")
	log.SetLevel(log.InfoLevel)
	log.SetOutput(os.Stderr)
}
