package wire

import (
	"fmt"

	cerrors "github.com/lud4ik/cmdnet/errors"
)

// Error codes for the wire package, registered in errors.MinPkgWire's range.
const (
	CodeSchemaNotCommandFirst cerrors.CodeError = cerrors.MinPkgWire + iota + 1
	CodeSchemaDuplicateID
	CodeValidationMissingField
	CodeValidationWrongType
	CodeValidationOversizeString
	CodeValidationInvalidUTF8
	CodeValidationUnknownCommand
	CodeValidationTruncated
	CodeValidationTrailingBytes
	CodeFramingTooLarge
)

func init() {
	cerrors.RegisterIdFctMessage(cerrors.MinPkgWire, message)
}

func message(code cerrors.CodeError) string {
	switch code {
	case CodeSchemaNotCommandFirst:
		return "first field of a packet spec must be a command field"
	case CodeSchemaDuplicateID:
		return "command id already registered"
	case CodeValidationMissingField:
		return "missing field value"
	case CodeValidationWrongType:
		return "field value has the wrong type"
	case CodeValidationOversizeString:
		return "string field exceeds its declared maxsize"
	case CodeValidationInvalidUTF8:
		return "string field is not valid utf-8"
	case CodeValidationUnknownCommand:
		return "unknown command id"
	case CodeValidationTruncated:
		return "frame body is shorter than its schema requires"
	case CodeValidationTrailingBytes:
		return "frame body has trailing bytes past the last field"
	case CodeFramingTooLarge:
		return "frame length exceeds the maximum frame size"
	}
	return cerrors.NullMessage
}

// IsSchema reports whether err carries a schema-range code.
func IsSchema(err cerrors.Error) bool {
	return err != nil && (err.HasCode(CodeSchemaNotCommandFirst) || err.HasCode(CodeSchemaDuplicateID))
}

// IsValidation reports whether err carries a validation-range code.
func IsValidation(err cerrors.Error) bool {
	if err == nil {
		return false
	}
	for _, c := range []cerrors.CodeError{
		CodeValidationMissingField, CodeValidationWrongType, CodeValidationOversizeString,
		CodeValidationInvalidUTF8, CodeValidationUnknownCommand, CodeValidationTruncated,
		CodeValidationTrailingBytes,
	} {
		if err.HasCode(c) {
			return true
		}
	}
	return false
}

// IsFraming reports whether err carries the framing-range code.
func IsFraming(err cerrors.Error) bool {
	return err != nil && err.HasCode(CodeFramingTooLarge)
}

func newSchema(code cerrors.CodeError, format string, args ...interface{}) cerrors.Error {
	return cerrors.New(code, fmt.Sprintf(format, args...))
}

func newValidation(code cerrors.CodeError, format string, args ...interface{}) cerrors.Error {
	return cerrors.New(code, fmt.Sprintf(format, args...))
}

func newFraming(code cerrors.CodeError, format string, args ...interface{}) cerrors.Error {
	return cerrors.New(code, fmt.Sprintf(format, args...))
}
