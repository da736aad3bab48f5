package sales

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable reports that the dataset could not be fetched or parsed.
	// It is terminal for the session that produced it.
	ErrDataUnavailable = errors.New("sales: data unavailable")
	// ErrMalformedSchema is a DataUnavailable failure caused by a missing column
	// or an unparseable cell.
	ErrMalformedSchema = fmt.Errorf("%w: malformed schema", ErrDataUnavailable)
)
