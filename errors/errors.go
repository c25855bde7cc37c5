/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package errors

import (
	"fmt"
	"runtime"
	"strings"
)

type ers struct {
	c uint16
	e string
	p []Error
	t runtime.Frame
}

// New builds an Error with the given code and message, capturing the
// caller's file and line, and attaching any non-nil parents.
func New(code CodeError, message string, parent ...error) Error {
	e := &ers{
		c: code.Uint16(),
		e: message,
		p: make([]Error, 0, len(parent)),
		t: caller(),
	}
	e.Add(parent...)
	return e
}

// Newf is New with fmt.Sprintf-style message formatting.
func Newf(code CodeError, format string, args ...interface{}) Error {
	return New(code, fmt.Sprintf(format, args...))
}

// IfError returns an Error wrapping the first non-nil entry of err, or nil
// if every entry is nil. Useful to collapse an optional parent into a
// possibly-nil Error without an explicit branch at the call site.
func IfError(code CodeError, message string, err ...error) Error {
	for _, e := range err {
		if e != nil {
			return New(code, message, e)
		}
	}
	return nil
}

func caller() runtime.Frame {
	var pcs [1]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return runtime.Frame{}
	}
	f, _ := runtime.CallersFrames(pcs[:n]).Next()
	return f
}

func (e *ers) is(err *ers) bool {
	if e == nil || err == nil {
		return false
	}

	if ss, sd := e.GetTrace(), err.GetTrace(); ss != "" || sd != "" {
		return ss == sd
	}

	if ss, sd := e.Error(), err.Error(); ss != "" || sd != "" {
		return strings.EqualFold(ss, sd)
	}

	return e.c == err.c
}

func (e *ers) Is(err error) bool {
	if err == nil {
		return false
	}

	if er, ok := err.(*ers); ok {
		return e.is(er)
	}
	return e.IsError(err)
}

func (e *ers) Add(parent ...error) {
	for _, v := range parent {
		if v == nil {
			continue
		}

		if er, ok := v.(*ers); ok {
			if e.IsError(er) {
				continue
			}
			e.p = append(e.p, er)
		} else if err, ok := v.(Error); ok {
			e.p = append(e.p, err)
		} else {
			e.p = append(e.p, &ers{e: v.Error()})
		}
	}
}

func (e *ers) SetParent(parent ...error) {
	e.p = make([]Error, 0, len(parent))
	e.Add(parent...)
}

func (e *ers) IsCode(code CodeError) bool {
	return e.c == code.Uint16()
}

func (e *ers) HasCode(code CodeError) bool {
	if e.IsCode(code) {
		return true
	}
	for _, p := range e.p {
		if p.HasCode(code) {
			return true
		}
	}
	return false
}

func (e *ers) GetCode() CodeError {
	return CodeError(e.c)
}

func (e *ers) GetParentCode() []CodeError {
	res := []CodeError{e.GetCode()}
	for _, p := range e.p {
		res = append(res, p.GetParentCode()...)
	}
	return unicCodeSlice(res)
}

func (e *ers) IsError(err error) bool {
	if err == nil {
		return e.e == ""
	}
	return strings.EqualFold(e.e, err.Error())
}

func (e *ers) HasError(err error) bool {
	if e.IsError(err) {
		return true
	}
	for _, p := range e.p {
		if p.HasError(err) {
			return true
		}
	}
	return false
}

func (e *ers) HasParent() bool {
	return len(e.p) > 0
}

func (e *ers) GetParent(withMainError bool) []error {
	res := make([]error, 0, len(e.p)+1)
	if withMainError {
		res = append(res, &ers{c: e.c, e: e.e, t: e.t})
	}
	for _, p := range e.p {
		res = append(res, p.GetParent(true)...)
	}
	return res
}

func (e *ers) Map(fct FuncMap) bool {
	if !fct(e) {
		return false
	}
	for _, p := range e.p {
		if !p.Map(fct) {
			return false
		}
	}
	return true
}

func (e *ers) Code() uint16 {
	return e.c
}

func (e *ers) Error() string {
	if e.c == 0 {
		return e.e
	}
	return fmt.Sprintf("[%d] %s", e.c, e.e)
}

func (e *ers) GetTrace() string {
	if e.t.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", e.t.File, e.t.Line)
}

func (e *ers) GetFile() string {
	return e.t.File
}

func (e *ers) GetLine() int {
	return e.t.Line
}
