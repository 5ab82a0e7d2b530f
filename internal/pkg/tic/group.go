package tic

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/anicoll/linky-integration/internal/pkg/config"
)

const (
	stx = 0x02
	etx = 0x03
	eot = 0x04
	lf  = 0x0A
	cr  = 0x0D
	sp  = 0x20
	ht  = 0x09
)

// maxGroupLen bounds a group between LF and CR. Real groups stay under 100
// bytes; anything longer is line noise.
const maxGroupLen = 128

var (
	ErrChecksum     = errors.New("checksum mismatch")
	ErrGroupLayout  = errors.New("malformed group")
	ErrFrameAborted = errors.New("frame aborted")
	ErrGroupTooLong = errors.New("group too long")
)

// Group is one information group of a frame.
type Group struct {
	Label string
	Value string
	// Horodate is only set by standard mode groups that carry one.
	Horodate string
}

func separator(mode config.TICMode) byte {
	if mode == config.TICModeStandard {
		return ht
	}
	return sp
}

func checksum(data []byte) byte {
	var sum uint
	for _, b := range data {
		sum += uint(b)
	}
	return byte(sum&0x3F) + 0x20
}

// ParseGroup decodes the bytes between LF and CR.
func ParseGroup(raw []byte, mode config.TICMode) (Group, error) {
	sep := separator(mode)
	if len(raw) < 4 || raw[len(raw)-2] != sep {
		return Group{}, fmt.Errorf("%w: %q", ErrGroupLayout, raw)
	}
	sum := raw[len(raw)-1]
	covered := raw[:len(raw)-1]
	if mode != config.TICModeStandard {
		// historic checksums stop before the last separator
		covered = raw[:len(raw)-2]
	}
	if want := checksum(covered); want != sum {
		return Group{}, fmt.Errorf("%w: got %q want %q in %q", ErrChecksum, sum, want, raw)
	}

	fields := bytes.Split(raw[:len(raw)-2], []byte{sep})
	switch {
	case len(fields) == 2:
		return Group{Label: string(fields[0]), Value: string(fields[1])}, nil
	case len(fields) == 3 && mode == config.TICModeStandard:
		return Group{Label: string(fields[0]), Horodate: string(fields[1]), Value: string(fields[2])}, nil
	}
	return Group{}, fmt.Errorf("%w: %d fields in %q", ErrGroupLayout, len(fields), raw)
}

// Frame is a complete set of groups received between STX and ETX.
type Frame map[string]Group

// decoder turns the serial byte stream into frames.
type decoder struct {
	mode    config.TICMode
	inFrame bool
	inGroup bool
	group   []byte
	frame   Frame
	// onGroupError is called for every dropped group.
	onGroupError func(error)
}

func newDecoder(mode config.TICMode, onGroupError func(error)) *decoder {
	return &decoder{mode: mode, onGroupError: onGroupError}
}

// feed consumes one byte and returns a frame once ETX closes it.
func (d *decoder) feed(b byte) (Frame, error) {
	b &= 0x7F // 7 bit data
	switch b {
	case stx:
		d.inFrame = true
		d.inGroup = false
		d.frame = Frame{}
		return nil, nil
	case eot:
		if !d.inFrame {
			return nil, nil
		}
		d.inFrame = false
		d.inGroup = false
		return nil, ErrFrameAborted
	case etx:
		if !d.inFrame {
			return nil, nil
		}
		d.inFrame = false
		d.inGroup = false
		return d.frame, nil
	}
	if !d.inFrame {
		return nil, nil
	}
	switch b {
	case lf:
		d.inGroup = true
		d.group = d.group[:0]
	case cr:
		if !d.inGroup {
			return nil, nil
		}
		d.inGroup = false
		g, err := ParseGroup(d.group, d.mode)
		if err != nil {
			if d.onGroupError != nil {
				d.onGroupError(err)
			}
			return nil, nil
		}
		d.frame[g.Label] = g
	default:
		if !d.inGroup {
			return nil, nil
		}
		if len(d.group) >= maxGroupLen {
			d.inGroup = false
			d.group = d.group[:0]
			if d.onGroupError != nil {
				d.onGroupError(fmt.Errorf("%w: more than %d bytes", ErrGroupTooLong, maxGroupLen))
			}
			return nil, nil
		}
		d.group = append(d.group, b)
	}
	return nil, nil
}
