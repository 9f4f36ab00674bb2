package jelly

import (
	"errors"
	"fmt"
)

// ErrorCode represents a programmatic error code for error handling.
type ErrorCode string

const (
	// ErrCodeDeserialization indicates a malformed or unsupported input stream.
	ErrCodeDeserialization ErrorCode = "DESERIALIZATION"
	// ErrCodeIncompatibleOptions indicates stream options outside the supported bounds.
	ErrCodeIncompatibleOptions ErrorCode = "INCOMPATIBLE_OPTIONS"
	// ErrCodeSerialization indicates illegal use of an encoder.
	ErrCodeSerialization ErrorCode = "SERIALIZATION"
	// ErrCodeTranscoding indicates a stream that cannot be transcoded.
	ErrCodeTranscoding ErrorCode = "TRANSCODING"
	// ErrCodeUnknown is returned for errors outside the taxonomy.
	ErrCodeUnknown ErrorCode = "UNKNOWN"
)

var (
	// ErrDeserialization is wrapped by every error caused by a malformed,
	// corrupt or unsupported input stream.
	ErrDeserialization = errors.New("jelly: deserialization error")
	// ErrSerialization is wrapped by every error caused by illegal encoder usage.
	ErrSerialization = errors.New("jelly: serialization error")
	// ErrTranscoding is wrapped by every error raised by the transcoder itself.
	ErrTranscoding = errors.New("jelly: transcoding error")
)

// Code returns the error code for err, or "" for a nil error.
func Code(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var optErr *OptionsError
	switch {
	case errors.As(err, &optErr):
		return ErrCodeIncompatibleOptions
	case errors.Is(err, ErrDeserialization):
		return ErrCodeDeserialization
	case errors.Is(err, ErrSerialization):
		return ErrCodeSerialization
	case errors.Is(err, ErrTranscoding):
		return ErrCodeTranscoding
	}
	return ErrCodeUnknown
}

// Deserializationf returns an error wrapping ErrDeserialization.
func Deserializationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDeserialization, fmt.Sprintf(format, args...))
}

// Serializationf returns an error wrapping ErrSerialization.
func Serializationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSerialization, fmt.Sprintf(format, args...))
}

// Transcodingf returns an error wrapping ErrTranscoding.
func Transcodingf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTranscoding, fmt.Sprintf(format, args...))
}

// Option fields named by OptionsError.
const (
	FieldVersion               = "version"
	FieldGeneralizedStatements = "generalized_statements"
	FieldRdfStar               = "rdf_star"
	FieldNameTableSize         = "max_name_table_size"
	FieldPrefixTableSize       = "max_prefix_table_size"
	FieldDatatypeTableSize     = "max_datatype_table_size"
	FieldPhysicalType          = "physical_type"
	FieldLogicalType           = "logical_type"
)

// OptionsError reports the single option bound a stream violated.
// It wraps ErrDeserialization.
type OptionsError struct {
	Field  string
	Reason string
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("jelly: incompatible stream options: %s: %s", e.Field, e.Reason)
}

func (e *OptionsError) Unwrap() error {
	return ErrDeserialization
}

func optionsErrorf(field, format string, args ...any) *OptionsError {
	return &OptionsError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
