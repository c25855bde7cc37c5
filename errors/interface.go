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

// Package errors provides the error taxonomy for the command/reply service:
// numeric error codes, parent/child hierarchies and call-site tracing, so a
// handler can tell a SchemaError from a ValidationError without string
// matching.
package errors

// FuncMap is called for each error in a hierarchy by Map; returning false
// stops the walk early.
type FuncMap func(e error) bool

// Error extends the standard error with a numeric code, a parent chain and
// the call site where it was created.
type Error interface {
	error

	// IsCode reports whether this error's own code equals code.
	IsCode(code CodeError) bool
	// HasCode reports whether this error or any parent carries code.
	HasCode(code CodeError) bool
	// GetCode returns this error's own code.
	GetCode() CodeError
	// GetParentCode returns the unique codes of this error and all parents.
	GetParentCode() []CodeError

	// Is implements compatibility with the standard errors.Is.
	Is(e error) bool
	// IsError reports whether e has the same message as this error.
	IsError(e error) bool
	// HasError reports whether err appears anywhere in the parent chain.
	HasError(err error) bool
	// HasParent reports whether this error carries at least one parent.
	HasParent() bool
	// GetParent returns the parent chain, optionally including this error.
	GetParent(withMainError bool) []error
	// Map walks this error and its parents depth-first.
	Map(fct FuncMap) bool

	// Add appends non-nil errors to the parent chain.
	Add(parent ...error)
	// SetParent replaces the parent chain.
	SetParent(parent ...error)

	// Code returns the numeric code as a plain uint16.
	Code() uint16
	// GetTrace returns "file:line" of the call site that created the error.
	GetTrace() string
	// GetFile returns the source file of the call site.
	GetFile() string
	// GetLine returns the source line of the call site.
	GetLine() int
}
