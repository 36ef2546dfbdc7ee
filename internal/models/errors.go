package models

import (
	"errors"
	"fmt"
)

// MalformedInputError marks a snapshot whose required raw fields are missing
// or of the wrong shape. The record is rejected, the batch continues.
type MalformedInputError struct {
	Field  string
	Reason string
}

func (e MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %s: %s", e.Field, e.Reason)
}

// InvalidRangeError marks a computed value outside physically valid bounds.
type InvalidRangeError struct {
	Field  string
	Reason string
}

func (e InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: %s: %s", e.Field, e.Reason)
}

// UnknownPollutantError is returned when a pollutant required for the AQI
// computation is absent from the snapshot.
type UnknownPollutantError struct {
	Pollutant string
}

func (e UnknownPollutantError) Error() string {
	return fmt.Sprintf("unknown pollutant: required pollutant %q is missing", e.Pollutant)
}

// StorageError wraps a failure of the underlying store. Unlike the per-record
// errors above, it aborts the remainder of the current batch.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsRecordError reports whether err is one of the per-record errors that are
// recovered locally and reported in LoadResult.Rejected.
func IsRecordError(err error) bool {
	var malformed MalformedInputError
	var invalidRange InvalidRangeError
	var unknownPollutant UnknownPollutantError
	return errors.As(err, &malformed) ||
		errors.As(err, &invalidRange) ||
		errors.As(err, &unknownPollutant)
}
