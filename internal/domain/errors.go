package domain

import "errors"

// ErrInvalidRequest indicates that a linkage request contains invalid data.
var ErrInvalidRequest = errors.New("invalid linkage request")

// ErrInvalidConfig indicates that the linkage configuration is invalid.
var ErrInvalidConfig = errors.New("invalid linkage configuration")

// ErrEmptyRecordID indicates that a record without an identifier was submitted.
var ErrEmptyRecordID = errors.New("record id must not be empty")

// ErrDuplicateRecordID indicates that two records in one batch share an identifier.
// Buckets partition the batch by id, so duplicate ids cannot be linked.
var ErrDuplicateRecordID = errors.New("duplicate record id in batch")

// ErrUnknownRecordID indicates that an edge references an id outside the batch.
var ErrUnknownRecordID = errors.New("edge references unknown record id")
