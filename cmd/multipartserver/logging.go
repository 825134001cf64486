package main

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds a zap logger sinked through a rotating file, the same
// pairing gnet itself defaults to for its own internal logging.
func newLogger(logPath string) *zap.Logger {
	rotator := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    64, // MiB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   true,
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(rotator), zap.InfoLevel)

	return zap.New(core)
}

// messageIDs hands out ULIDs used to correlate every log line belonging to
// one multipart message, grounded on synqronlabs/raven's use of ulid for
// message identifiers.
type messageIDs struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newMessageIDs() *messageIDs {
	return &messageIDs{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (m *messageIDs) next() ulid.ULID {
	m.mu.Lock()
	defer m.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), m.entropy)
}
