// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package media

import (
	"context"
	"image"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type TrackKind string

const (
	KindAudio TrackKind = "audio"
	KindVideo TrackKind = "video"
)

// Track is single media track inside of Stream.
// Stopping track is final, track can not be restarted.
type Track interface {
	ID() string
	Kind() TrackKind
	Stop()
	Stopped() bool
}

// VideoTrack produces decoded frames.
type VideoTrack interface {
	Track
	// ReadFrame blocks until next frame is available.
	// After Stop it returns io.EOF
	ReadFrame(ctx context.Context) (image.Image, error)
}

// AudioTrack is raw PCM reader. Each Read returns at most one frame of 16 bit
// little endian samples in track Format.
type AudioTrack interface {
	Track
	io.Reader
	Format() AudioFormat
}

type AudioFormat struct {
	SampleRate  int
	NumChannels int
	FrameDur    time.Duration
}

var (
	// DefaultAudioFormat is mono 48k with 20ms frames
	DefaultAudioFormat = AudioFormat{SampleRate: 48000, NumChannels: 1, FrameDur: 20 * time.Millisecond}
)

// Samples returns number of samples per channel in single frame
func (f AudioFormat) Samples() int {
	return int(int64(f.SampleRate) * int64(f.FrameDur) / int64(time.Second))
}

// FrameSize returns size of frame in bytes
func (f AudioFormat) FrameSize() int {
	return f.Samples() * f.NumChannels * 2
}

// TrackState is helper for implementing Track stop semantics.
// It must be initialized with Init before use
type TrackState struct {
	id      string
	kind    TrackKind
	stopped atomic.Bool
	done    chan struct{}
}

func (s *TrackState) Init(kind TrackKind) {
	s.id = uuid.NewString()
	s.kind = kind
	s.done = make(chan struct{})
}

func (s *TrackState) ID() string {
	return s.id
}

func (s *TrackState) Kind() TrackKind {
	return s.kind
}

func (s *TrackState) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.done)
	}
}

func (s *TrackState) Stopped() bool {
	return s.stopped.Load()
}

// Done is closed when track is stopped
func (s *TrackState) Done() <-chan struct{} {
	return s.done
}
