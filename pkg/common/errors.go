package common

import "fmt"

// ConfigurationError indicates invalid settings. It is fatal at startup and
// stops the run before any file is touched.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("Configuration Error: %s", e.Message)
}

// ContainerError indicates a missing or corrupt embedded metadata container.
// It is scoped to a single file and degrades to absent metadata fields.
type ContainerError struct {
	Message string
}

func (e *ContainerError) Error() string {
	return fmt.Sprintf("Metadata Container Error: %s", e.Message)
}

// CoordinateError indicates malformed GPS rational data or an unsupported
// projection identifier. Only the derived field is lost.
type CoordinateError struct {
	Message string
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("Coordinate Error: %s", e.Message)
}

// CodecError indicates an unreadable image or a failed re-encode. The file
// is recorded as Failed; sibling files are unaffected.
type CodecError struct {
	Message string
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("Codec Error: %s", e.Message)
}

func NewConfigurationError(message string) error {
	return &ConfigurationError{Message: message}
}

func NewContainerError(message string) error {
	return &ContainerError{Message: message}
}

func NewCoordinateError(message string) error {
	return &CoordinateError{Message: message}
}

func NewCodecError(message string) error {
	return &CodecError{Message: message}
}
