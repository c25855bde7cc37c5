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
	"sort"
	"strconv"
)

// idMsgFct stores the mapping between the lowest code of a package's range
// and the message function that package registered for it.
var idMsgFct = make(map[CodeError]Message)

// Message renders a human-readable message for a CodeError.
type Message func(code CodeError) (message string)

// CodeError is a numeric error code, similar in spirit to an HTTP status
// code. Each package that defines errors reserves a range via modules.go
// and registers a Message function for its minimum code.
type CodeError uint16

const (
	// UnknownError is used when no package-specific code applies.
	UnknownError CodeError = 0

	// UnknownMessage is returned for codes with no registered message.
	UnknownMessage = "unknown error"

	// NullMessage is the empty message, used internally to detect misses.
	NullMessage = ""
)

// Uint16 returns the code as a uint16.
func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

// Int returns the code as an int.
func (c CodeError) Int() int {
	return int(c)
}

// String returns the decimal representation of the code.
func (c CodeError) String() string {
	return strconv.Itoa(c.Int())
}

// Message returns the message registered for this code's range, falling
// back to UnknownMessage.
func (c CodeError) Message() string {
	if c == UnknownError {
		return UnknownMessage
	}

	if f, ok := idMsgFct[findCodeErrorInMapMessage(c)]; ok {
		if m := f(c); m != "" {
			return m
		}
	}

	return UnknownMessage
}

// Error builds an Error from this code, optionally wrapping parent errors.
func (c CodeError) Error(p ...error) Error {
	return New(c, c.Message(), p...)
}

// RegisterIdFctMessage registers the message function serving every code
// at or above minCode, until the next registered range begins.
func RegisterIdFctMessage(minCode CodeError, fct Message) {
	if idMsgFct == nil {
		idMsgFct = make(map[CodeError]Message)
	}

	idMsgFct[minCode] = fct
}

// ExistInMapMessage reports whether code resolves to a non-empty message,
// used at package init time to detect a colliding code range.
func ExistInMapMessage(code CodeError) bool {
	if f, ok := idMsgFct[findCodeErrorInMapMessage(code)]; ok {
		return f(code) != NullMessage
	}

	return false
}

func getMapMessageKey() []CodeError {
	keys := make([]int, 0, len(idMsgFct))
	for k := range idMsgFct {
		keys = append(keys, k.Int())
	}
	sort.Ints(keys)

	res := make([]CodeError, 0, len(keys))
	for _, k := range keys {
		res = append(res, CodeError(k))
	}
	return res
}

func findCodeErrorInMapMessage(code CodeError) CodeError {
	var res CodeError = 0

	for _, k := range getMapMessageKey() {
		if k <= code && k > res {
			res = k
		}
	}

	return res
}

func unicCodeSlice(slice []CodeError) []CodeError {
	res := make([]CodeError, 0, len(slice))
	seen := make(map[CodeError]bool, len(slice))

	for _, c := range slice {
		if !seen[c] {
			seen[c] = true
			res = append(res, c)
		}
	}

	return res
}
