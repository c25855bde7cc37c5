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

package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

type logger struct {
	e *logrus.Entry
}

// New returns a Logger writing to stdout in text format, defaulted to
// InfoLevel, via logrus.
func New() Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(InfoLevel.Logrus())
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &logger{e: logrus.NewEntry(l)}
}

func (g *logger) Write(p []byte) (int, error) {
	g.e.Info(string(p))
	return len(p), nil
}

func (g *logger) SetLevel(lvl Level) {
	g.e.Logger.SetLevel(lvl.Logrus())
}

func (g *logger) GetLevel() Level {
	switch g.e.Logger.GetLevel() {
	case logrus.DebugLevel:
		return DebugLevel
	case logrus.InfoLevel:
		return InfoLevel
	case logrus.WarnLevel:
		return WarnLevel
	case logrus.ErrorLevel:
		return ErrorLevel
	case logrus.FatalLevel:
		return FatalLevel
	case logrus.PanicLevel:
		return PanicLevel
	default:
		return NilLevel
	}
}

func (g *logger) WithFields(fields Fields) Logger {
	return &logger{e: g.e.WithFields(logrus.Fields(fields))}
}

func (g *logger) Debug(message string, fields Fields) {
	g.entry(fields).Debug(message)
}

func (g *logger) Info(message string, fields Fields) {
	g.entry(fields).Info(message)
}

func (g *logger) Warning(message string, fields Fields) {
	g.entry(fields).Warning(message)
}

func (g *logger) Error(message string, fields Fields) {
	g.entry(fields).Error(message)
}

func (g *logger) Fatal(message string, fields Fields) {
	g.entry(fields).Fatal(message)
}

func (g *logger) entry(fields Fields) *logrus.Entry {
	if len(fields) == 0 {
		return g.e
	}
	return g.e.WithFields(logrus.Fields(fields))
}
