package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for user-input failures. The responder recovers all of
// these into SMS-length corrective replies; none is fatal to the request.
var (
	// ErrCoordinateOutOfRange marks coordinates that parse but fall outside
	// the supported region's bounding box.
	ErrCoordinateOutOfRange = errors.New("coordinates outside supported region")

	// ErrInvalidCoordinate marks coordinates that fail basic validation
	// (lat outside [-90,90], lon outside [-180,180], or unparseable).
	ErrInvalidCoordinate = errors.New("invalid coordinates")

	// ErrUnknownSender marks a phone number with no active subscription.
	ErrUnknownSender = errors.New("sender has no active subscription")
)

// UnknownCodeError reports a waypoint code that matches nothing on the
// sender's route. It carries the valid codes so the reply can list them.
type UnknownCodeError struct {
	Code       string
	ValidCodes []string
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("unknown waypoint code %q (valid: %s)", e.Code, strings.Join(e.ValidCodes, " "))
}
