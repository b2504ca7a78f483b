package convert

import "errors"

// Domain errors for conversion operations.
var (
	// ErrToolNotFound indicates the external conversion tool is not on PATH.
	ErrToolNotFound = errors.New("convert: conversion tool not found")

	// ErrConversionFailed indicates the tool exited non-zero.
	ErrConversionFailed = errors.New("convert: conversion failed")

	// ErrUnknownFormat indicates a job with an unrecognized target format.
	ErrUnknownFormat = errors.New("convert: unknown target format")
)

// ConversionError wraps a tool failure with document context.
type ConversionError struct {
	Document string
	Format   Format
	ExitCode int
	Stderr   string
	Wrapped  error
}

func (e *ConversionError) Error() string {
	return e.Wrapped.Error()
}

func (e *ConversionError) Unwrap() error {
	return e.Wrapped
}
