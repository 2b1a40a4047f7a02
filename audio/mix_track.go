// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package audio

import (
	"context"
	"errors"
	"io"

	"github.com/emiago/streammerge/media"
)

// mixTrack is output of Destination. It is expected to have single reader.
type mixTrack struct {
	media.TrackState
	dest   *Destination
	format media.AudioFormat

	readBuf []byte
	pacer   *media.Pacer
}

func newMixTrack(d *Destination, f media.AudioFormat) *mixTrack {
	t := &mixTrack{
		dest:    d,
		format:  f,
		readBuf: make([]byte, f.FrameSize()),
		pacer:   media.NewPacer(f.FrameDur),
	}
	t.Init(media.KindAudio)
	return t
}

func (t *mixTrack) Format() media.AudioFormat {
	return t.format
}

// Read reads single frame from every input and mixes them.
// Without inputs it returns silence paced at frame duration.
func (t *mixTrack) Read(b []byte) (int, error) {
	if t.Stopped() {
		return 0, io.EOF
	}

	n := min(len(b), t.format.FrameSize())
	mixed := b[:n]
	clear(mixed)

	inputs := t.dest.snapshotInputs()
	if len(inputs) == 0 {
		if err := t.pacer.Wait(context.Background(), t.Done()); err != nil {
			return 0, err
		}
		return n, nil
	}

	for _, in := range inputs {
		buf := t.readBuf[:n]
		rn, err := io.ReadFull(in.track, buf)
		if err != nil {
			// Failed or ended source is no longer part of mix, others keep playing
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				t.dest.ctx.log.Debug().Str("stream", in.streamID).Msg("Audio input ended")
			} else {
				t.dest.ctx.log.Error().Err(err).Str("stream", in.streamID).Msg("Audio input failed. Removing from mix")
			}
			in.Disconnect()
		}
		PCMMix(mixed, mixed, buf[:rn])
	}

	if t.Stopped() {
		return 0, io.EOF
	}
	return n, nil
}

func (t *mixTrack) Stop() {
	t.TrackState.Stop()
	t.pacer.Stop()
}
