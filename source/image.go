// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

// Package source provides ready made tracks which can be merged: still images,
// generated test patterns, tones and wav files.
package source

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"time"

	"github.com/emiago/streammerge/media"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageTrack is video track repeating same still image at fps
type ImageTrack struct {
	media.TrackState
	img   image.Image
	pacer *media.Pacer
}

func NewImage(img image.Image, fps int) *ImageTrack {
	t := &ImageTrack{
		img:   img,
		pacer: media.NewPacer(frameInterval(fps)),
	}
	t.Init(media.KindVideo)
	return t
}

// LoadImage decodes png, jpeg, bmp or webp file into still video track
func LoadImage(path string, fps int) (*ImageTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image %q: %w", path, err)
	}
	return NewImage(img, fps), nil
}

func (t *ImageTrack) ReadFrame(ctx context.Context) (image.Image, error) {
	if t.Stopped() {
		return nil, io.EOF
	}
	if err := t.pacer.Wait(ctx, t.Done()); err != nil {
		return nil, err
	}
	return t.img, nil
}

func (t *ImageTrack) Stop() {
	t.TrackState.Stop()
	t.pacer.Stop()
}

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 25
	}
	return time.Second / time.Duration(fps)
}
