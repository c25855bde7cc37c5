/*
MIT License

Copyright (c) 2019 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package logger is the structured logging sink handed to every component
// of the command/reply service: the reactor, the transport layer and the
// command protocol all log through this interface rather than touching
// logrus directly.
package logger

import "io"

// Fields carries structured key/value context attached to a single log
// entry, e.g. {"session": "abcd...", "remote": "127.0.0.1:51002"}.
type Fields map[string]interface{}

// FuncLog returns a Logger instance, used for dependency injection where a
// component should not build its own logger.
type FuncLog func() Logger

// Logger is the minimal level-based logging sink external callers must
// provide: a set of level methods plus the ability to raise or read the
// minimal level. It also satisfies io.Writer so it can back a standard
// library *log.Logger when needed.
type Logger interface {
	io.Writer

	// SetLevel changes the minimal level a message must reach to be emitted.
	SetLevel(lvl Level)
	// GetLevel returns the current minimal level.
	GetLevel() Level

	// WithFields returns a derived Logger that always carries fields.
	WithFields(fields Fields) Logger

	// Debug logs a message at DebugLevel.
	Debug(message string, fields Fields)
	// Info logs a message at InfoLevel.
	Info(message string, fields Fields)
	// Warning logs a message at WarnLevel.
	Warning(message string, fields Fields)
	// Error logs a message at ErrorLevel.
	Error(message string, fields Fields)
	// Fatal logs a message at FatalLevel then terminates the process.
	Fatal(message string, fields Fields)
}
