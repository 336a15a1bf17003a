package logger

import (
	"fmt"
	"io"
	"sync"
)

// mockLogger writes formatted log lines to the supplied writer. Tests pass a
// strings.Builder and assert on its contents.
type mockLogger struct {
	w  io.Writer
	mu sync.Mutex
}

func NewMockLogger(w io.Writer) Logger {
	return &mockLogger{w: w}
}

func (m *mockLogger) write(level, msg string, fields ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.w, "%s: %s", level, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(m.w, " %v=%v", fields[i], fields[i+1])
	}
	fmt.Fprintln(m.w)
}

func (m *mockLogger) Info(msg string, fields ...interface{})  { m.write("info", msg, fields...) }
func (m *mockLogger) Error(msg string, fields ...interface{}) { m.write("error", msg, fields...) }
func (m *mockLogger) Warn(msg string, fields ...interface{})  { m.write("warn", msg, fields...) }
func (m *mockLogger) Debug(msg string, fields ...interface{}) { m.write("debug", msg, fields...) }
func (m *mockLogger) Fatal(msg string, fields ...interface{}) { m.write("fatal", msg, fields...) }
