package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	log  *logrus.Logger
	once sync.Once
)

// GetLogger returns the shared application logger, creating it on first use.
func GetLogger() *logrus.Logger {
	once.Do(func() {
		log = logrus.New()
		log.SetOutput(os.Stdout)
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true})
		level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
		if err != nil {
			level = logrus.DebugLevel
		}
		log.SetLevel(level)
	})
	return log
}

func Log(level logrus.Level, message string) {
	log := GetLogger()
	switch level {
	case logrus.PanicLevel:
		log.Panic(message)
	case logrus.FatalLevel:
		log.Fatal(message)
	case logrus.ErrorLevel:
		log.Error(message)
	case logrus.WarnLevel:
		log.Warn(message)
	case logrus.InfoLevel:
		log.Info(message)
	case logrus.DebugLevel:
		log.Debug(message)
	default:
		log.Info(message)
	}
}
