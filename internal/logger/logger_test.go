package logger

import (
	"testing"

	"github.com/rxtech-lab/kline-downloader/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zapcore"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (suite *LoggerTestSuite) TestNewLogger() {
	logger, err := NewLogger()
	suite.NoError(err)
	suite.NotNil(logger)
	suite.NotNil(logger.Logger)
}

func (suite *LoggerTestSuite) TestNewLoggerWithLevel() {
	logger, err := NewLoggerWithLevel("debug")
	suite.NoError(err)
	suite.True(logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLoggerWithLevel("warn")
	suite.NoError(err)
	suite.False(logger.Core().Enabled(zapcore.InfoLevel))
}

func (suite *LoggerTestSuite) TestNewLoggerWithInvalidLevel() {
	_, err := NewLoggerWithLevel("chatty")
	suite.Error(err)
	suite.Contains(err.Error(), "invalid log level")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *LoggerTestSuite) TestLoggerSyncNilLogger() {
	logger := &Logger{Logger: nil}

	// Sync should not panic and should return nil for a nil inner logger
	err := logger.Sync()
	suite.NoError(err)
}

func (suite *LoggerTestSuite) TestNopAndNamed() {
	logger := NewNop().Named("paginator")
	suite.NotNil(logger.Logger)

	// These should not panic
	logger.Info("test info message")
	logger.Warn("test warn message")
	suite.NoError(logger.Sync())
}
