// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package media

import (
	"context"
	"io"
)

// SilenceTrack is audio track producing zero samples paced at frame duration.
// It is what canvas capture carries as its default audio track.
type SilenceTrack struct {
	TrackState
	format AudioFormat
	pacer  *Pacer
}

func NewSilenceTrack(f AudioFormat) *SilenceTrack {
	t := &SilenceTrack{format: f, pacer: NewPacer(f.FrameDur)}
	t.Init(KindAudio)
	return t
}

func (t *SilenceTrack) Format() AudioFormat {
	return t.format
}

func (t *SilenceTrack) Read(b []byte) (int, error) {
	if t.Stopped() {
		return 0, io.EOF
	}
	if err := t.pacer.Wait(context.Background(), t.Done()); err != nil {
		return 0, err
	}

	n := min(len(b), t.format.FrameSize())
	clear(b[:n])
	return n, nil
}

func (t *SilenceTrack) Stop() {
	t.TrackState.Stop()
	t.pacer.Stop()
}
