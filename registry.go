// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package streammerge

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/emiago/streammerge/audio"
	"github.com/emiago/streammerge/media"
	"github.com/emiago/streammerge/playback"
	"github.com/rs/zerolog"
)

// StreamOption configures how single added stream is rendered
type StreamOption func(d *descriptor)

// WithPosition sets top left corner of stream on surface. Default is 0,0
func WithPosition(x, y float64) StreamOption {
	return func(d *descriptor) {
		d.x = x
		d.y = y
	}
}

// WithSize sets drawn size. Zero means full surface width or height
func WithSize(width, height float64) StreamOption {
	return func(d *descriptor) {
		d.width = width
		d.height = height
	}
}

// WithDraw replaces default drawing with custom frame transform
func WithDraw(fn DrawFunc) StreamOption {
	return func(d *descriptor) {
		d.draw = fn
	}
}

// WithMute excludes stream audio from mix
func WithMute(mute bool) StreamOption {
	return func(d *descriptor) {
		d.mute = mute
	}
}

// descriptor is single registration of stream. It is never modified after add.
type descriptor struct {
	id      string
	x, y    float64
	width   float64
	height  float64
	draw    DrawFunc
	mute    bool
	element *playback.Element
}

// registry keeps descriptors in registration order.
// Same stream identity shares playback element and audio tap, but every add
// appends own descriptor.
type registry struct {
	width  float64
	height float64

	container *playback.Container
	mix       *mixGraph
	log       zerolog.Logger

	mu          sync.Mutex
	descriptors []*descriptor
}

func newRegistry(width, height int, container *playback.Container, mix *mixGraph, log zerolog.Logger) *registry {
	return &registry{
		width:     float64(width),
		height:    float64(height),
		container: container,
		mix:       mix,
		log:       log,
	}
}

func (r *registry) add(s *media.Stream, opts ...StreamOption) error {
	d := &descriptor{id: s.ID()}
	for _, o := range opts {
		o(d)
	}
	if d.width == 0 {
		d.width = r.width
	}
	if d.height == 0 {
		d.height = r.height
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if d.id != "" {
		for _, ex := range r.descriptors {
			if ex.id == d.id {
				d.element = ex.element
				break
			}
		}
	}

	if d.element == nil {
		el, err := r.container.Create(s)
		if err != nil {
			return err
		}

		if !d.mute {
			if err := r.mix.tap(s); err != nil {
				if !errors.Is(err, audio.ErrNoAudioTrack) {
					r.container.Remove(el)
					return fmt.Errorf("failed to tap audio: %w", err)
				}
				r.log.Debug().Str("stream", d.id).Msg("Stream has no audio track. Nothing to mix")
			}
		}
		d.element = el
	}

	r.descriptors = append(r.descriptors, d)
	r.log.Debug().Str("stream", d.id).Int("descriptors", len(r.descriptors)).Msg("Stream added")
	return nil
}

// remove removes all descriptors of stream identity
func (r *registry) remove(s *media.Stream) error {
	id := s.ID()

	r.mu.Lock()
	// First collect, then remove
	var matched []int
	if id != "" {
		for i, d := range r.descriptors {
			if d.id == id {
				matched = append(matched, i)
			}
		}
	}
	if len(matched) == 0 {
		r.mu.Unlock()
		return ErrStreamNotFound
	}

	elements := make([]*playback.Element, 0, 1)
	kept := make([]*descriptor, 0, len(r.descriptors)-len(matched))
	for i, d := range r.descriptors {
		if slices.Contains(matched, i) {
			if !slices.Contains(elements, d.element) {
				elements = append(elements, d.element)
			}
			continue
		}
		kept = append(kept, d)
	}
	r.descriptors = kept
	r.mu.Unlock()

	for _, el := range elements {
		r.container.Remove(el)
	}
	r.mix.untap(id)
	r.log.Debug().Str("stream", id).Int("removed", len(matched)).Msg("Stream removed")
	return nil
}

// snapshot returns descriptors for single frame
func (r *registry) snapshot() []*descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.descriptors)
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.descriptors)
}

func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors = nil
}
