package tic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/linky-integration/internal/pkg/config"
)

func TestParseGroup(t *testing.T) {
	tests := map[string]struct {
		raw     string
		mode    config.TICMode
		want    Group
		wantErr error
	}{
		"historic": {
			raw:  "HCHC 014460852 $",
			mode: config.TICModeHistoric,
			want: Group{Label: "HCHC", Value: "014460852"},
		},
		"standard": {
			raw:  "RELAIS\t130\tF",
			mode: config.TICModeStandard,
			want: Group{Label: "RELAIS", Value: "130"},
		},
		"standard with horodate": {
			raw:  "SMAXSN\tE240101083000\t03450\t)",
			mode: config.TICModeStandard,
			want: Group{Label: "SMAXSN", Horodate: "E240101083000", Value: "03450"},
		},
		"standard horodate only": {
			raw:  "DATE\tE240101120000\t\t)",
			mode: config.TICModeStandard,
			want: Group{Label: "DATE", Horodate: "E240101120000"},
		},
		"bad checksum": {
			raw:     "HCHC 014460852 A",
			mode:    config.TICModeHistoric,
			wantErr: ErrChecksum,
		},
		"wrong separator": {
			raw:     "RELAIS 130 F",
			mode:    config.TICModeStandard,
			wantErr: ErrGroupLayout,
		},
		"too short": {
			raw:     "A $",
			mode:    config.TICModeHistoric,
			wantErr: ErrGroupLayout,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseGroup([]byte(tt.raw), tt.mode)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func frameBytes(groups ...string) []byte {
	out := []byte{stx}
	for _, g := range groups {
		out = append(out, lf)
		out = append(out, g...)
		out = append(out, cr)
	}
	return append(out, etx)
}

func TestDecoder_Frames(t *testing.T) {
	var dropped []error
	d := newDecoder(config.TICModeHistoric, func(err error) { dropped = append(dropped, err) })

	stream := append([]byte("garbage"), frameBytes("ADCO 031428097115 @", "BASE 002815421 \"", "HCHC 014460852 X")...)
	var frames []Frame
	for _, b := range stream {
		f, err := d.feed(b)
		require.NoError(t, err)
		if f != nil {
			frames = append(frames, f)
		}
	}

	require.Len(t, frames, 1)
	assert.Equal(t, "002815421", frames[0]["BASE"].Value)
	assert.Equal(t, "031428097115", frames[0]["ADCO"].Value)
	assert.NotContains(t, frames[0], "HCHC")
	require.Len(t, dropped, 1)
	assert.ErrorIs(t, dropped[0], ErrChecksum)
}

func TestDecoder_EOTAbortsFrame(t *testing.T) {
	d := newDecoder(config.TICModeHistoric, nil)
	partial := frameBytes("BASE 002815421 \"")
	partial = partial[:len(partial)-1]

	var aborted bool
	for _, b := range append(partial, eot) {
		f, err := d.feed(b)
		assert.Nil(t, f)
		if err != nil {
			assert.ErrorIs(t, err, ErrFrameAborted)
			aborted = true
		}
	}
	assert.True(t, aborted)

	// ETX outside a frame is ignored
	f, err := d.feed(etx)
	assert.NoError(t, err)
	assert.Nil(t, f)
}

func TestDecoder_DropsOverlongGroup(t *testing.T) {
	var dropped []error
	d := newDecoder(config.TICModeHistoric, func(err error) { dropped = append(dropped, err) })

	noise := append([]byte{stx, lf}, bytes.Repeat([]byte{'A'}, 10*maxGroupLen)...)
	input := append(noise, frameBytes("BASE 002815421 \"")[1:]...)

	var got Frame
	for _, b := range input {
		f, err := d.feed(b)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(d.group), maxGroupLen)
		if f != nil {
			got = f
		}
	}
	require.NotNil(t, got)
	assert.Equal(t, "002815421", got["BASE"].Value)
	assert.Len(t, got, 1)
	require.Len(t, dropped, 1)
	assert.ErrorIs(t, dropped[0], ErrGroupTooLong)
}

func TestDecoder_StripsParityBit(t *testing.T) {
	d := newDecoder(config.TICModeHistoric, nil)
	var got Frame
	for _, b := range frameBytes("BASE 002815421 \"") {
		f, err := d.feed(b | 0x80)
		require.NoError(t, err)
		if f != nil {
			got = f
		}
	}
	require.NotNil(t, got)
	assert.Equal(t, "002815421", got["BASE"].Value)
}

func TestParseIdentification(t *testing.T) {
	id := ParseIdentification("041876097289")
	assert.Equal(t, "LANDIS ET GYR / SIEMENS METERING / LANDIS+GYR", id.Constructor)
	assert.Equal(t, "2018", id.ManufactureYear)
	assert.Equal(t, "Linky triphasé 60 A G3", id.Type)
	assert.Equal(t, "097289", id.RegNumber)

	unknown := ParseIdentification("991299000001")
	assert.Equal(t, "Unknown (99)", unknown.Constructor)
	assert.Equal(t, "Unknown (99)", unknown.Type)

	short := ParseIdentification("")
	assert.Equal(t, DefaultManufacturer, short.Constructor)
	assert.Equal(t, DefaultModel, short.Type)
}
