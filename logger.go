package gacha

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
)

// Logger is the minimal leveled logging interface the client emits debug
// output through. Messages carry alternating key/value context pairs.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// SimpleLogger writes leveled key=value lines through the standard logger.
type SimpleLogger struct {
	logger *log.Logger
}

// NewSimpleLogger creates a console logger suitable for development.
func NewSimpleLogger() *SimpleLogger {
	return &SimpleLogger{logger: log.Default()}
}

func (l *SimpleLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log("DEBUG", msg, keysAndValues...)
}

func (l *SimpleLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log("INFO", msg, keysAndValues...)
}

func (l *SimpleLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log("WARN", msg, keysAndValues...)
}

func (l *SimpleLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log("ERROR", msg, keysAndValues...)
}

func (l *SimpleLogger) log(level, msg string, keysAndValues ...interface{}) {
	var b strings.Builder
	b.WriteString(level)
	b.WriteString(" ")
	b.WriteString(msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	if len(keysAndValues)%2 == 1 {
		fmt.Fprintf(&b, " %v", keysAndValues[len(keysAndValues)-1])
	}
	l.logger.Print(b.String())
}

// DebugConfig selects which request lifecycle events are logged. All flags
// are opt-in so an enabled logger stays quiet unless asked.
type DebugConfig struct {
	Enabled      bool
	LogRequests  bool
	LogCache     bool
	LogRetries   bool
	LogRateLimit bool
	LogCircuit   bool
	RequestIDGen func() string
}

// DefaultDebugConfig returns a config with every event class enabled and a
// random request ID generator. Pair it with WithDebug to switch it on.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:      false,
		LogRequests:  true,
		LogCache:     true,
		LogRetries:   true,
		LogRateLimit: true,
		LogCircuit:   true,
		RequestIDGen: defaultRequestIDGen,
	}
}

func defaultRequestIDGen() string {
	return fmt.Sprintf("req_%08x", rand.Uint32())
}
