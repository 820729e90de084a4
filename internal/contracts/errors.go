package contracts

import "errors"

// Pipeline error taxonomy. Every error is fatal to the run; callers match
// with errors.Is after the stage context has been wrapped on.
var (
	// ErrMissingPriceData: a required symbol has no retrievable recent price
	ErrMissingPriceData = errors.New("missing price data")

	// ErrExternalFetchFailure: network or parse failure from a price or rate source
	ErrExternalFetchFailure = errors.New("external fetch failure")

	// ErrInvalidAllocationInput: non-positive capital or empty asset list
	ErrInvalidAllocationInput = errors.New("invalid allocation input")

	// ErrInvalidRateInput: non-finite rate or amount reaching the projector
	ErrInvalidRateInput = errors.New("invalid rate input")

	// ErrInvalidCatalogue: catalogue product with a negative or non-finite rate
	ErrInvalidCatalogue = errors.New("invalid catalogue")
)
