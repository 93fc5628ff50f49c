package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDataUnavailable is returned by every query of an engine built from an
	// empty dataset.
	ErrDataUnavailable = errors.New("no data available")

	// ErrInvalidDataset is returned when a dataset is not a well-formed table.
	ErrInvalidDataset = errors.New("dataset is not a valid table")
)

// MissingColumnsError names every required column absent from a dataset.
type MissingColumnsError struct {
	Op      string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Op, strings.Join(e.Columns, ", "))
}

// ComputationError wraps an arithmetic or type failure during aggregation.
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
