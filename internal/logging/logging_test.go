package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNew_ParsesValidLevel(t *testing.T) {
	logger := New("warn")
	require.Equal(t, logrus.WarnLevel, logger.GetLevel())
	_, ok := logger.Formatter.(*logrus.JSONFormatter)
	require.True(t, ok)
}

func TestNew_FallsBackToInfoOnInvalidLevel(t *testing.T) {
	logger := New("not-a-level")
	require.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNew_FallsBackToInfoOnEmptyLevel(t *testing.T) {
	logger := New("")
	require.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
