// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package media

import (
	"context"
	"image"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVideoTrack struct {
	TrackState
}

func newFakeVideoTrack() *fakeVideoTrack {
	t := &fakeVideoTrack{}
	t.Init(KindVideo)
	return t
}

func (t *fakeVideoTrack) ReadFrame(ctx context.Context) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func TestStreamTracks(t *testing.T) {
	video := newFakeVideoTrack()
	silence := NewSilenceTrack(DefaultAudioFormat)
	s := NewStream(video, silence)

	assert.NotEmpty(t, s.ID())
	assert.Len(t, s.Tracks(), 2)
	require.Len(t, s.AudioTracks(), 1)
	require.Len(t, s.VideoTracks(), 1)
	assert.Equal(t, silence.ID(), s.AudioTracks()[0].ID())

	// Same track twice is ignored
	s.AddTrack(silence)
	assert.Len(t, s.Tracks(), 2)

	assert.True(t, s.RemoveTrack(silence))
	assert.False(t, s.RemoveTrack(silence))
	assert.Empty(t, s.AudioTracks())
	assert.False(t, silence.Stopped())

	s.Stop()
	assert.True(t, video.Stopped())
}

func TestStreamNilIdentity(t *testing.T) {
	var s *Stream
	assert.Equal(t, "", s.ID())
	assert.Equal(t, "", NewStreamWithID("").ID())
}

func TestSilenceTrack(t *testing.T) {
	f := AudioFormat{SampleRate: 8000, NumChannels: 1, FrameDur: 10 * time.Millisecond}
	assert.Equal(t, 80, f.Samples())
	assert.Equal(t, 160, f.FrameSize())

	tr := NewSilenceTrack(f)
	buf := []byte{1, 2, 3}
	buf = append(buf, make([]byte, 300)...)
	n, err := tr.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 160, n)
	for _, b := range buf[:n] {
		require.Zero(t, b)
	}

	tr.Stop()
	tr.Stop()
	_, err = tr.Read(buf)
	require.ErrorIs(t, err, io.EOF)
}
