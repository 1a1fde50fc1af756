package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/lni/dragonboat/v4/logger"
)

// loggerNames lists every package logger of dCaps
var loggerNames = []string{"server", "transport", "worker", "cmd"}

// --------------------------------------------------------------------------
// Log output (stdout, optionally tee'd into a log file)
// --------------------------------------------------------------------------

var (
	outputMutex sync.Mutex
	output      io.Writer = os.Stdout
	logFile     *os.File
)

func currentOutput() io.Writer {
	outputMutex.Lock()
	defer outputMutex.Unlock()
	return output
}

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// dCapsLogger implements the ILogger interface with custom formatting
type dCapsLogger struct {
	name   string
	level  atomic.Int32
	logger *log.Logger
}

func (l *dCapsLogger) SetLevel(level logger.LogLevel) {
	l.level.Store(int32(level))
}

func (l *dCapsLogger) enabled(level logger.LogLevel) bool {
	return logger.LogLevel(l.level.Load()) >= level
}

func (l *dCapsLogger) Debugf(format string, args ...interface{}) {
	if l.enabled(logger.DEBUG) {
		l.log("DEBUG", format, args...)
	}
}

func (l *dCapsLogger) Infof(format string, args ...interface{}) {
	if l.enabled(logger.INFO) {
		l.log("INFO", format, args...)
	}
}

func (l *dCapsLogger) Warningf(format string, args ...interface{}) {
	if l.enabled(logger.WARNING) {
		l.log("WARN", format, args...)
	}
}

func (l *dCapsLogger) Errorf(format string, args ...interface{}) {
	if l.enabled(logger.ERROR) {
		l.log("ERROR", format, args...)
	}
}

func (l *dCapsLogger) Panicf(format string, args ...interface{}) {
	if l.enabled(logger.CRITICAL) {
		panic(fmt.Sprintf(format, args...))
	}
}

// log formats and writes a log message. this internal helper is used by the public methods
func (l *dCapsLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-10s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// CreateLogger implements the dragonboat logger.Factory
func CreateLogger(pkgName string) logger.ILogger {
	l := &dCapsLogger{
		name:   pkgName,
		logger: log.New(currentOutput(), "", log.Ldate|log.Ltime),
	}
	l.SetLevel(logger.INFO)
	return l
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return logger.INFO, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers installs the custom logger factory, opens the log file (if
// configured) and sets the level of all dCaps loggers
func InitLoggers(config ServerConfig) error {
	level, err := ParseLogLevel(config.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if config.LogFile != "" {
		// truncated on every start
		f, err := os.Create(config.LogFile)
		if err != nil {
			return fmt.Errorf("%w %s: %v", ErrLogFile, config.LogFile, err)
		}

		outputMutex.Lock()
		if logFile != nil {
			_ = logFile.Close()
		}
		logFile = f
		output = io.MultiWriter(os.Stdout, f)
		outputMutex.Unlock()
	}

	// Set as the global logger factory
	logger.SetLoggerFactory(CreateLogger)

	for _, name := range loggerNames {
		logger.GetLogger(name).SetLevel(level)
	}
	return nil
}

// FlushLogs syncs the log file to disk. It is a no-op without a log file.
func FlushLogs() error {
	outputMutex.Lock()
	defer outputMutex.Unlock()
	if logFile == nil {
		return nil
	}
	return logFile.Sync()
}
