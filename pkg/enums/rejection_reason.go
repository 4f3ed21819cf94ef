package enums

import "fmt"

// RejectionReason names why a wallet-transfer receipt was refused.
type RejectionReason string

const (
	RejectionOCRFailed          RejectionReason = "ocr_failed"
	RejectionNotProviderMatch   RejectionReason = "not_provider_match"
	RejectionMissingReference   RejectionReason = "missing_reference"
	RejectionMissingDatetime    RejectionReason = "missing_datetime"
	RejectionTooOld             RejectionReason = "too_old"
	RejectionDuplicateReference RejectionReason = "duplicate_reference"
)

var validRejectionReasons = []RejectionReason{
	RejectionOCRFailed,
	RejectionNotProviderMatch,
	RejectionMissingReference,
	RejectionMissingDatetime,
	RejectionTooOld,
	RejectionDuplicateReference,
}

// String implements fmt.Stringer.
func (r RejectionReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RejectionReason.
func (r RejectionReason) IsValid() bool {
	for _, candidate := range validRejectionReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRejectionReason converts raw input into a RejectionReason.
func ParseRejectionReason(value string) (RejectionReason, error) {
	for _, candidate := range validRejectionReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rejection reason %q", value)
}
