package domain

import "errors"

var (
	// ErrNotFound means an expected data file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSchema means a required column is missing.
	ErrSchema = errors.New("schema error")
	// ErrParse means a date or numeric field could not be parsed.
	ErrParse = errors.New("parse error")
	// ErrEmptyResult means a valid query matched no rows.
	ErrEmptyResult = errors.New("no data for this period")
	// ErrInvalidRegion means a region is not one of the five known regions.
	ErrInvalidRegion = errors.New("invalid region")
	// ErrInvalidMonth means a month is outside 1 through 12.
	ErrInvalidMonth = errors.New("invalid month")
	// ErrUnknownModel means a model is not in the catalog.
	ErrUnknownModel = errors.New("unknown model")
)
