// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package source

import (
	"context"
	"encoding/binary"
	"io"
	"math"

	"github.com/emiago/streammerge/media"
)

// ToneTrack is live sine wave audio track
type ToneTrack struct {
	media.TrackState
	Freq      float64
	Amplitude int16

	format media.AudioFormat
	pacer  *media.Pacer
	sample int
}

func NewTone(freq float64, format media.AudioFormat) *ToneTrack {
	t := &ToneTrack{
		Freq:      freq,
		Amplitude: math.MaxInt16 / 4,
		format:    format,
		pacer:     media.NewPacer(format.FrameDur),
	}
	t.Init(media.KindAudio)
	return t
}

func (t *ToneTrack) Format() media.AudioFormat {
	return t.format
}

// Read generates single frame of tone. Same sample is written on all channels
func (t *ToneTrack) Read(b []byte) (int, error) {
	if t.Stopped() {
		return 0, io.EOF
	}
	if err := t.pacer.Wait(context.Background(), t.Done()); err != nil {
		return 0, err
	}

	step := t.format.NumChannels * 2
	n := min(len(b), t.format.FrameSize())
	n -= n % step
	for i := 0; i < n; i += step {
		v := float64(t.Amplitude) * math.Sin(2*math.Pi*t.Freq*float64(t.sample)/float64(t.format.SampleRate))
		for ch := 0; ch < t.format.NumChannels; ch++ {
			binary.LittleEndian.PutUint16(b[i+ch*2:], uint16(int16(v)))
		}
		t.sample++
	}
	return n, nil
}

func (t *ToneTrack) Stop() {
	t.TrackState.Stop()
	t.pacer.Stop()
}
