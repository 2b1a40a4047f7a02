// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package audio

import (
	"fmt"
	"io"
	"time"

	"github.com/emiago/streammerge/media"
	"github.com/go-audio/wav"
)

func NewWavDecoder(r io.ReadSeeker) *wav.Decoder {
	dec := wav.NewDecoder(r)
	return dec
}

// DecodeWavPCM validates wav and forwards reader to PCM data.
// Only 16 bit PCM is supported.
func DecodeWavPCM(r io.ReadSeeker, frameDur time.Duration) (io.Reader, media.AudioFormat, error) {
	dec := NewWavDecoder(r)
	if err := dec.FwdToPCM(); err != nil {
		return nil, media.AudioFormat{}, err
	}
	if err := dec.Err(); err != nil {
		return nil, media.AudioFormat{}, err
	}
	if dec.PCMChunk == nil || dec.NumChans == 0 {
		return nil, media.AudioFormat{}, fmt.Errorf("invalid wav file")
	}
	if dec.BitDepth != 16 {
		return nil, media.AudioFormat{}, fmt.Errorf("received bitdepth=%d, but only 16 bit PCM supported", dec.BitDepth)
	}

	f := media.AudioFormat{
		SampleRate:  int(dec.SampleRate),
		NumChannels: int(dec.NumChans),
		FrameDur:    frameDur,
	}
	return dec.PCMChunk, f, nil
}
