// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package source

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/emiago/streammerge/audio"
	"github.com/emiago/streammerge/media"
)

// WavTrack streams PCM of wav file in real time. Track ends with io.EOF
type WavTrack struct {
	media.TrackState
	file   *os.File
	pcm    io.Reader
	format media.AudioFormat
	pacer  *media.Pacer

	closeOnce sync.Once
}

// OpenWav opens 16 bit PCM wav file. Track frames are media.DefaultAudioFormat duration
func OpenWav(path string) (*WavTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	pcm, format, err := audio.DecodeWavPCM(f, media.DefaultAudioFormat.FrameDur)
	if err != nil {
		f.Close()
		return nil, err
	}

	t := &WavTrack{
		file:   f,
		pcm:    pcm,
		format: format,
		pacer:  media.NewPacer(format.FrameDur),
	}
	t.Init(media.KindAudio)
	return t, nil
}

func (t *WavTrack) Format() media.AudioFormat {
	return t.format
}

func (t *WavTrack) Read(b []byte) (int, error) {
	if t.Stopped() {
		return 0, io.EOF
	}
	if err := t.pacer.Wait(context.Background(), t.Done()); err != nil {
		return 0, err
	}

	n, err := t.pcm.Read(b[:min(len(b), t.format.FrameSize())])
	if err != nil {
		t.Stop()
	}
	return n, err
}

// Stop stops track and closes file
func (t *WavTrack) Stop() {
	t.TrackState.Stop()
	t.pacer.Stop()
	t.closeOnce.Do(func() {
		t.file.Close()
	})
}
