package relay

import (
	"errors"
	"fmt"
)

// Tag is the TIC label carrying the relay bitfield.
const Tag = "RELAIS"

const (
	IconClosed = "mdi:electric-switch-closed"
	IconOpen   = "mdi:electric-switch"
)

var (
	ErrMalformedValue = errors.New("malformed relay value")
	ErrInvalidIndex   = errors.New("invalid relay index")
)

// Change reports which flags flipped during a Refresh.
type Change struct {
	State        bool
	Availability bool
}

func (c Change) Any() bool {
	return c.State || c.Availability
}

// DisplayHints is what a host adapter shows for a relay.
type DisplayHints struct {
	Icon  string
	Value string
}

// Hints maps an observed state to its display hints.
func Hints(closed bool) DisplayHints {
	if closed {
		return DisplayHints{Icon: IconClosed, Value: "ON"}
	}
	return DisplayHints{Icon: IconOpen, Value: "OFF"}
}

// Decode reads the bit at index0 of value rendered as an 8 bit MSB-first field.
func Decode(value, index0 int) (bool, error) {
	if value < 0 || value > 0xFF {
		return false, fmt.Errorf("%w: %d is not a byte", ErrMalformedValue, value)
	}
	if index0 < 0 || index0 > 7 {
		return false, fmt.Errorf("%w: bit %d", ErrInvalidIndex, index0)
	}
	return (value>>(7-index0))&1 == 1, nil
}

// State tracks one relay contact. It is not safe for concurrent use; all
// refreshes happen on the notification goroutine.
type State struct {
	index0    int
	closed    *bool
	available bool
}

// NewState builds the decoder for the 1-based relay index.
func NewState(relayIndex int) (*State, error) {
	if relayIndex < 1 || relayIndex > 8 {
		return nil, fmt.Errorf("%w: relay %d", ErrInvalidIndex, relayIndex)
	}
	return &State{index0: relayIndex - 1}, nil
}

func (s *State) Index() int {
	return s.index0 + 1
}

// Closed returns the last decoded state. ok is false until a value was decoded.
func (s *State) Closed() (closed bool, ok bool) {
	if s.closed == nil {
		return false, false
	}
	return *s.closed, true
}

func (s *State) Available() bool {
	return s.available
}

// Refresh applies the latest raw value. A nil raw means the tag was not in the
// last frame; it only revokes availability once a full frame has been read.
// On a malformed value nothing changes and the error is returned.
func (s *State) Refresh(raw *int, hasReadFullFrame bool) (Change, error) {
	var change Change
	if raw == nil {
		if s.available && hasReadFullFrame {
			s.available = false
			change.Availability = true
		}
		return change, nil
	}

	closed, err := Decode(*raw, s.index0)
	if err != nil {
		return change, err
	}
	if !s.available {
		s.available = true
		change.Availability = true
	}
	if s.closed == nil || *s.closed != closed {
		s.closed = &closed
		change.State = true
	}
	return change, nil
}
