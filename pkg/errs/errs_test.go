// Copyright 2023 The mxquadtree Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testingWriter is a WriteSyncer that writes to the the messages.
type testingWriter struct {
	messages []string
}

func newTestingWriter() *testingWriter {
	return &testingWriter{}
}

func (w *testingWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	p = bytes.TrimRight(p, "\n")
	m := string(p)
	w.messages = append(w.messages, m)
	return n, nil
}

func (w *testingWriter) Sync() error {
	return nil
}

type verifyLogger struct {
	*zap.Logger
	w *testingWriter
}

func (logger *verifyLogger) Message() string {
	if logger.w.messages == nil {
		return ""
	}
	return logger.w.messages[len(logger.w.messages)-1]
}

func newZapTestLogger(cfg *log.Config, opts ...zap.Option) verifyLogger {
	// TestingWriter is used to write to memory.
	// Used in the verify logger.
	writer := newTestingWriter()
	lg, _, _ := log.InitLoggerWithWriteSyncer(cfg, writer, writer, opts...)
	return verifyLogger{
		Logger: lg,
		w:      writer,
	}
}

func TestError(t *testing.T) {
	re := require.New(t)
	conf := &log.Config{Level: "debug", File: log.FileLogConfig{}, DisableTimestamp: true}
	lg := newZapTestLogger(conf)
	log.ReplaceGlobals(lg.Logger, nil)

	rfc := `[error="[MXQT:quadtree:ErrPointOutOfDomain]point (2, 3) is out of domain`
	log.Error("test", zap.Error(ErrPointOutOfDomain.FastGenByArgs(2, 3, "[-1,-1,1,1]")))
	re.Contains(lg.Message(), rfc)
	err := errors.New("test error")
	log.Error("test", ZapError(ErrLoadConfig, err))
	rfc = `[error="[MXQT:config:ErrLoadConfig]test error`
	re.Contains(lg.Message(), rfc)
}

func TestErrorEqual(t *testing.T) {
	re := require.New(t)
	err1 := ErrInvalidDepth.FastGenByArgs(0, 32)
	err2 := ErrInvalidDepth.FastGenByArgs(40, 32)
	re.True(errors.ErrorEqual(err1, err2))

	err3 := ErrEmptyLabel.FastGenByArgs(-1)
	re.False(errors.ErrorEqual(err1, err3))
	re.True(ErrEmptyLabel.Equal(err3))
	re.False(ErrEmptyLabel.Equal(err1))

	wrapped := errors.Annotate(err3, "insert")
	re.True(ErrEmptyLabel.Equal(errors.Cause(wrapped)))
}

func TestZapError(t *testing.T) {
	err := errors.New("test")
	log.Info("test", ZapError(err))
	err1 := ErrRenderChart
	log.Info("test", ZapError(err1))
	log.Info("test", ZapError(err1, err))
	log.Info("test", ZapError(nil))
}

func TestErrorWithStack(t *testing.T) {
	re := require.New(t)
	conf := &log.Config{Level: "debug", File: log.FileLogConfig{}, DisableTimestamp: true}
	lg := newZapTestLogger(conf)
	log.ReplaceGlobals(lg.Logger, nil)

	_, err := strings.NewReader("").Read(make([]byte, 1))
	log.Error("test", zap.Error(errors.WithStack(err)))
	m1 := lg.Message()
	re.Contains(m1, "EOF")
	re.Contains(m1, "errs_test.go")
}
