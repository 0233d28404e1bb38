package common

import (
	"github.com/spf13/viper"
)

const (
	// CfgLogLevel sets the log level.
	CfgLogLevel = "log.level"
	// CfgLogFile sets the file logs are written to, in addition to stderr.
	// Empty disables the file sink.
	CfgLogFile = "log.file"
	// CfgLogFileMaxSize limits the size in megabytes of the log file before it is rotated.
	CfgLogFileMaxSize = "log.fileMaxSize"
	// CfgLogFileMaxBackups limits the number of rotated log files kept around.
	CfgLogFileMaxBackups = "log.fileMaxBackups"
)

// InitialConfig is the default configuartion produced by the config init command.
const InitialConfig = `# Lumina Ledger configuration
ledger:
  path: "44'/148'/0'"
  validate: true
  display: false
log:
  level: info
`

func init() {
	viper.SetDefault(CfgLogLevel, "info")
	viper.SetDefault(CfgLogFile, "")
	viper.SetDefault(CfgLogFileMaxSize, 10)
	viper.SetDefault(CfgLogFileMaxBackups, 3)
}

// WriteInitialConfig writes initial config file to file system.
func WriteInitialConfig(filePath string) error {
	return WriteFileAtomic(filePath, []byte(InitialConfig), 0600)
}
