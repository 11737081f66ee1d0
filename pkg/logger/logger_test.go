package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger(true).GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger(false).GetLevel())
}

func TestForTable(t *testing.T) {
	log := NewLogger(true)
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.ForTable("sample").Debug("compared")
	assert.Contains(t, buf.String(), "table=sample")
	assert.Contains(t, buf.String(), "compared")
}

func TestNopLoggerDiscards(t *testing.T) {
	log := NewNopLogger()
	assert.NotPanics(t, func() { log.ForTable("study").Info("ignored") })
}
