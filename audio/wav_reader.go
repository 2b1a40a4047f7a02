// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package audio

import (
	"fmt"
	"io"
	"time"

	"github.com/emiago/streammerge/media"
	"github.com/go-audio/riff"
)

// WavReader reads PCM data of wav written by WavWriter.
// Unlike DecodeWavPCM it does not need seeker.
type WavReader struct {
	riff.Parser
	chunkData *riff.Chunk
	DataSize  int
}

func NewWavReader(r io.Reader) *WavReader {
	parser := riff.New(r)
	reader := WavReader{Parser: *parser}
	return &reader
}

// ReadHeaders reads until data chunk
func (r *WavReader) ReadHeaders() error {
	if err := r.readFmt(); err != nil {
		return err
	}
	return r.readDataChunk()
}

// Format returns audio format from headers. Only 16 bit PCM can be mixed
func (r *WavReader) Format(frameDur time.Duration) (media.AudioFormat, error) {
	if r.BitsPerSample != 16 {
		return media.AudioFormat{}, fmt.Errorf("%w: wav has bitdepth=%d", ErrFormatMismatch, r.BitsPerSample)
	}
	return media.AudioFormat{
		SampleRate:  int(r.SampleRate),
		NumChannels: int(r.NumChannels),
		FrameDur:    frameDur,
	}, nil
}

func (r *WavReader) readFmt() error {
	if err := r.Parser.ParseHeaders(); err != nil {
		return err
	}
	for {
		chunk, err := r.NextChunk()
		if err != nil {
			return err
		}

		if chunk.ID != riff.FmtID {
			chunk.Drain()
			continue
		}
		return chunk.DecodeWavHeader(&r.Parser)
	}
}

func (r *WavReader) readDataChunk() error {
	for {
		chunk, err := r.NextChunk()
		if err != nil {
			return err
		}

		if chunk.ID != riff.DataFormatID {
			chunk.Drain()
			continue
		}
		r.chunkData = chunk
		r.DataSize = chunk.Size
		return nil
	}
}

// Read returns PCM underneath
func (r *WavReader) Read(buf []byte) (n int, err error) {
	if r.chunkData == nil {
		if err := r.readDataChunk(); err != nil {
			return 0, err
		}
	}
	return r.chunkData.Read(buf)
}
