// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package canvas

import (
	"context"
	"image"
	"io"
	"time"

	"github.com/emiago/streammerge/media"
)

// CaptureStream captures canvas as video track sampled at fps.
// Like browser canvas capture, stream also carries default audio track which is silent.
func (c *Canvas) CaptureStream(fps int) *media.Stream {
	if fps <= 0 {
		fps = 25
	}
	video := &captureTrack{
		canvas: c,
		pacer:  media.NewPacer(time.Second / time.Duration(fps)),
	}
	video.Init(media.KindVideo)
	return media.NewStream(video, media.NewSilenceTrack(media.DefaultAudioFormat))
}

type captureTrack struct {
	media.TrackState
	canvas *Canvas
	pacer  *media.Pacer
}

// FrameInterval is time between two captured frames
func (t *captureTrack) FrameInterval() time.Duration {
	return t.pacer.Interval()
}

func (t *captureTrack) ReadFrame(ctx context.Context) (image.Image, error) {
	if t.Stopped() {
		return nil, io.EOF
	}

	if err := t.pacer.Wait(ctx, t.Done()); err != nil {
		return nil, err
	}

	img := t.canvas.Snapshot()
	if img == nil {
		return nil, io.EOF
	}
	return img, nil
}

func (t *captureTrack) Stop() {
	t.TrackState.Stop()
	t.pacer.Stop()
}
