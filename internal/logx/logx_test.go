package logx

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in    string
		want  logrus.Level
		known bool
	}{
		{"", logrus.InfoLevel, true},
		{"INFO", logrus.InfoLevel, true},
		{"debug", logrus.DebugLevel, true},
		{"WARNING", logrus.WarnLevel, true},
		{"Error", logrus.ErrorLevel, true},
		{"CRITICAL", logrus.FatalLevel, true},
		{"trace", logrus.TraceLevel, true},
		{"LOUD", logrus.InfoLevel, false},
	}
	for _, c := range cases {
		got, known := ParseLevel(c.in)
		assert.Equal(t, c.want, got, "ParseLevel(%q)", c.in)
		assert.Equal(t, c.known, known, "ParseLevel(%q)", c.in)
	}
}

func TestNew_WritesFileAndConsole(t *testing.T) {
	p := filepath.Join(t.TempDir(), "logs.log")
	var console bytes.Buffer

	log, closeFn, err := New(Options{Path: p, Level: "INFO", Console: &console})
	require.NoError(t, err)
	log.WithField("run_id", "r1").Info("hello")
	log.Debug("hidden")
	require.NoError(t, closeFn())
	require.NoError(t, closeFn(), "重复关闭不应报错")

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "hello")
	assert.Contains(t, string(b), "run_id=r1")
	assert.NotContains(t, string(b), "hidden")
	assert.Contains(t, console.String(), "hello")
}

func TestNew_AppendsToExistingFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "logs.log")
	require.NoError(t, os.WriteFile(p, []byte("previous run\n"), 0o644))

	log, closeFn, err := New(Options{Path: p})
	require.NoError(t, err)
	log.Info("second run")
	require.NoError(t, closeFn())

	b, _ := os.ReadFile(p)
	assert.Contains(t, string(b), "previous run")
	assert.Contains(t, string(b), "second run")
}

func TestNew_FallsBackToConsole(t *testing.T) {
	p := filepath.Join(t.TempDir(), "missing", "logs.log")
	var console bytes.Buffer

	log, closeFn, err := New(Options{Path: p, Console: &console})
	require.NoError(t, err)
	defer closeFn()
	log.Info("still logging")

	assert.Contains(t, console.String(), "logging to console only")
	assert.Contains(t, console.String(), "still logging")
}

func TestNew_NoOutputAvailable(t *testing.T) {
	p := filepath.Join(t.TempDir(), "missing", "logs.log")
	_, _, err := New(Options{Path: p})
	assert.Error(t, err)
}

func TestNew_UnknownLevelWarns(t *testing.T) {
	var console bytes.Buffer
	log, _, err := New(Options{Level: "LOUD", Console: &console})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, console.String(), "unknown logging level")
}
