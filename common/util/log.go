package util

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/thetatoken/lumina/common"
)

func init() {
	customFormatter := new(log.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	log.SetFormatter(customFormatter)
	customFormatter.FullTimestamp = true
}

// InitLog applies the log configuration. It is called once the config file
// and the command line flags have been loaded.
func InitLog() error {
	level, err := log.ParseLevel(viper.GetString(common.CfgLogLevel))
	if err != nil {
		return errors.Wrapf(err, "invalid %v", common.CfgLogLevel)
	}
	log.SetLevel(level)

	var output io.Writer = os.Stderr
	if filePath := viper.GetString(common.CfgLogFile); filePath != "" {
		output = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    viper.GetInt(common.CfgLogFileMaxSize),
			MaxBackups: viper.GetInt(common.CfgLogFileMaxBackups),
		})
	}
	log.SetOutput(output)
	return nil
}
