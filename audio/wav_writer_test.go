// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package audio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/riff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWavWriter(t *testing.T) {
	f, err := os.OpenFile(filepath.Join(t.TempDir(), "test-wav-writer.wav"), os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0755)
	require.NoError(t, err)
	defer f.Close()

	w := NewWavWriterFormat(f, testFormat)
	n, err := w.Write(bytes.Repeat([]byte{1}, 100))
	require.NoError(t, err)
	require.Equal(t, 100, n)
	require.NoError(t, w.Close())

	f.Seek(0, 0)

	p := riff.New(f)
	err = p.ParseHeaders()
	require.NoError(t, err)

	for {
		chunk, err := p.NextChunk()
		require.NoError(t, err)

		if chunk.ID != riff.FmtID {
			chunk.Drain()
			continue
		}
		err = chunk.DecodeWavHeader(p)
		require.NoError(t, err)
		break
	}

	assert.EqualValues(t, 8000, p.SampleRate)
	assert.EqualValues(t, 1, p.NumChannels)
	assert.EqualValues(t, 100, w.DataSize())

	f.Seek(0, 0)
	r := NewWavReader(f)
	require.NoError(t, r.ReadHeaders())
	assert.Equal(t, 100, r.DataSize)
}

func TestWavReaderFormat(t *testing.T) {
	buf := &seekBuffer{}
	w := NewWavWriterFormat(buf, testFormat)
	pcm := bytes.Repeat([]byte{2, 0}, testFormat.Samples())
	_, err := w.Write(pcm)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := NewWavReader(bytes.NewReader(buf.data))
	require.NoError(t, r.ReadHeaders())
	f, err := r.Format(testFormat.FrameDur)
	require.NoError(t, err)
	assert.Equal(t, testFormat, f)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, pcm, data)
}

// seekBuffer is in memory io.WriteSeeker
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if end := b.pos + len(p); end > len(b.data) {
		b.data = append(b.data, make([]byte, end-len(b.data))...)
	}
	n := copy(b.data[b.pos:], p)
	b.pos += n
	return n, nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		b.pos = int(offset)
	case io.SeekCurrent:
		b.pos += int(offset)
	case io.SeekEnd:
		b.pos = len(b.data) + int(offset)
	}
	return int64(b.pos), nil
}
