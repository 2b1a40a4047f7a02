// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package streammerge

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/emiago/streammerge/audio"
	"github.com/emiago/streammerge/media"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotStarted = errors.New("streammerge: merger not started")
)

// Recording consumes merged stream
type Recording struct {
	// Is id of recording
	ID string

	stream *media.Stream
}

// NewRecording creates recording of stream. Usually it is merger Result
func NewRecording(s *media.Stream) (*Recording, error) {
	if s == nil {
		return nil, ErrNotStarted
	}
	return &Recording{
		ID:     uuid.NewString(),
		stream: s,
	}, nil
}

// Recording creates recording of current Result
func (m *Merger) Recording() (*Recording, error) {
	return NewRecording(m.Result())
}

// RecordAudio writes audio track of stream as WAV until context is done or track ends.
// WAV header is finalized before return.
func (r *Recording) RecordAudio(ctx context.Context, w io.WriteSeeker) (int64, error) {
	tracks := r.stream.AudioTracks()
	if len(tracks) == 0 {
		return 0, fmt.Errorf("stream has no audio track")
	}
	track := tracks[0]

	wavWriter := audio.NewWavWriterFormat(w, track.Format())
	buf := make([]byte, track.Format().FrameSize())

	written, err := media.CopyWithBuf(&ctxReader{ctx: ctx, r: track}, wavWriter, buf)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	log.Debug().Str("id", r.ID).Int64("bytes", written).Msg("Saving audio record")
	return written, errors.Join(err, wavWriter.Close())
}

// ctxReader ends reading with io.EOF once context is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(b []byte) (int, error) {
	if r.ctx.Err() != nil {
		return 0, io.EOF
	}
	return r.r.Read(b)
}

// ReadFrame reads next video frame of stream
func (r *Recording) ReadFrame(ctx context.Context) (image.Image, error) {
	tracks := r.stream.VideoTracks()
	if len(tracks) == 0 {
		return nil, fmt.Errorf("stream has no video track")
	}
	return tracks[0].ReadFrame(ctx)
}

// Snapshot writes next video frame as PNG
func (r *Recording) Snapshot(ctx context.Context, w io.Writer) error {
	img, err := r.ReadFrame(ctx)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
