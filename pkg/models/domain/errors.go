package domain

import "errors"

// Validation errors (client caused).
var (
	ErrMissingField          = errors.New("missing required field")
	ErrUnknownModule         = errors.New("unknown module")
	ErrMissingPartnerDetails = errors.New("second person details are required for compatibility analysis")
	ErrUnsupportedFormat     = errors.New("unsupported report format")
	ErrLocationNotFound      = errors.New("location could not be resolved")
	ErrUnsupportedGender     = errors.New("unsupported gender")
)

// Computation and infrastructure errors (server caused).
var (
	ErrChartComputation          = errors.New("chart computation failed")
	ErrIncompleteChart           = errors.New("chart is missing a required point")
	ErrSecondChartRequired       = errors.New("module requires a second chart")
	ErrDerivedPointUnimplemented = errors.New("derived point computation is not implemented")
	ErrUpstreamGeocoder          = errors.New("upstream geocoder failure")
	ErrExport                    = errors.New("report export failed")
)

// IsValidation reports whether err should be surfaced as a client error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrUnknownModule) ||
		errors.Is(err, ErrMissingPartnerDetails) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrLocationNotFound) ||
		errors.Is(err, ErrUnsupportedGender)
}
