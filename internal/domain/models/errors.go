package models

import (
	"errors"
	"fmt"
)

var (
	// ErrData matches any DataError via errors.Is.
	ErrData = errors.New("data error")
	// ErrConfiguration matches any ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound is returned by lookups of unknown ids.
	ErrNotFound = errors.New("not found")
)

// DataError reports unusable input bars.
type DataError struct {
	Column string
	Reason string
}

func (e *DataError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("data error: column %q: %s", e.Column, e.Reason)
	}
	return "data error: " + e.Reason
}

func (e *DataError) Is(target error) bool { return target == ErrData }

// HTTPStatus maps the error to 400.
func (e *DataError) HTTPStatus() int { return 400 }

// NewDataError builds a DataError.
func NewDataError(column, reason string) *DataError {
	return &DataError{Column: column, Reason: reason}
}

// ConfigurationError reports an invalid component selection or setting.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// HTTPStatus maps the error to 400.
func (e *ConfigurationError) HTTPStatus() int { return 400 }

// NewConfigurationError builds a ConfigurationError.
func NewConfigurationError(key, reason string) *ConfigurationError {
	return &ConfigurationError{Key: key, Reason: reason}
}

// NotFoundError reports an unknown id. It matches ErrNotFound.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %q not found", e.Kind, e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// HTTPStatus maps the error to 404.
func (e *NotFoundError) HTTPStatus() int { return 404 }

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}
