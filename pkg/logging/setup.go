package logging

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// Setup configures the process-wide logger. An empty level means info.
func Setup(level string, out io.Writer) error {
	if level == "" {
		level = "info"
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(parsed)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if out != nil {
		log.SetOutput(out)
	}
	return nil
}
