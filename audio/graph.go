// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package audio

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/emiago/streammerge/media"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoAudioTrack   = errors.New("audio: stream has no audio track")
	ErrContextClosed  = errors.New("audio: context closed")
	ErrFormatMismatch = errors.New("audio: track format does not match context")
)

// ContextFactory creates audio context. It is passed to merger instead of relying
// on any process wide constructor
type ContextFactory func() (*Context, error)

// DefaultContextFactory creates context with media.DefaultAudioFormat
func DefaultContextFactory() (*Context, error) {
	return NewContext(media.DefaultAudioFormat), nil
}

// Context owns audio graph nodes. All nodes created by context share its format.
type Context struct {
	format media.AudioFormat
	log    zerolog.Logger

	mu     sync.Mutex
	closed bool
	dests  []*Destination
	nodes  []*SourceNode
}

func NewContext(format media.AudioFormat) *Context {
	return &Context{
		format: format,
		log:    log.Logger.With().Str("caller", "audio.Context").Logger(),
	}
}

func (c *Context) Format() media.AudioFormat {
	return c.format
}

// CreateMediaStreamDestination creates node which mixes all connected sources
// into single audio track
func (c *Context) CreateMediaStreamDestination() (*Destination, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrContextClosed
	}

	d := &Destination{ctx: c}
	d.track = newMixTrack(d, c.format)
	d.stream = media.NewStream(d.track)
	c.dests = append(c.dests, d)
	return d, nil
}

// CreateMediaStreamSource creates node reading first audio track of stream
func (c *Context) CreateMediaStreamSource(s *media.Stream) (*SourceNode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrContextClosed
	}

	tracks := s.AudioTracks()
	if len(tracks) == 0 {
		return nil, ErrNoAudioTrack
	}
	track := tracks[0]
	f := track.Format()
	if f.SampleRate != c.format.SampleRate || f.NumChannels != c.format.NumChannels || f.FrameDur != c.format.FrameDur {
		return nil, fmt.Errorf("%w: rate=%d channels=%d frame=%s", ErrFormatMismatch, f.SampleRate, f.NumChannels, f.FrameDur)
	}

	n := &SourceNode{
		ctx:      c,
		streamID: s.ID(),
		track:    track,
	}
	return n, nil
}

// Close disconnects all connected nodes and stops destination tracks.
// Source tracks are not stopped as they are owned by caller
func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	nodes := c.nodes
	dests := c.dests
	c.nodes, c.dests = nil, nil
	c.mu.Unlock()

	for _, n := range nodes {
		n.Disconnect()
	}
	for _, d := range dests {
		d.track.Stop()
	}
	c.log.Debug().Int("nodes", len(nodes)).Msg("Audio context closed")
	return nil
}

// attach tracks connected node, so that Close can disconnect it
func (c *Context) attach(n *SourceNode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrContextClosed
	}
	if !slices.Contains(c.nodes, n) {
		c.nodes = append(c.nodes, n)
	}
	return nil
}

func (c *Context) detach(n *SourceNode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := slices.Index(c.nodes, n); i >= 0 {
		c.nodes = slices.Delete(c.nodes, i, i+1)
	}
}

// connected returns number of nodes connected to any destination
func (c *Context) connected() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

// SourceNode reads audio track of single stream
type SourceNode struct {
	ctx      *Context
	streamID string
	track    media.AudioTrack

	mu   sync.Mutex
	dest *Destination
}

func (n *SourceNode) StreamID() string {
	return n.streamID
}

func (n *SourceNode) Track() media.AudioTrack {
	return n.track
}

// Connect connects node to destination. Node can be connected to only one destination,
// connecting again moves it.
func (n *SourceNode) Connect(d *Destination) error {
	if d.ctx != n.ctx {
		return fmt.Errorf("audio: destination belongs to different context")
	}
	if err := n.ctx.attach(n); err != nil {
		return err
	}

	n.mu.Lock()
	prev := n.dest
	n.dest = d
	n.mu.Unlock()

	if prev != nil {
		prev.removeInput(n)
	}
	d.addInput(n)
	return nil
}

func (n *SourceNode) Disconnect() {
	n.mu.Lock()
	d := n.dest
	n.dest = nil
	n.mu.Unlock()

	if d != nil {
		d.removeInput(n)
	}
	n.ctx.detach(n)
}

// Destination mixes all inputs. There is no gain or balancing, samples are summed.
type Destination struct {
	ctx    *Context
	stream *media.Stream
	track  *mixTrack

	mu     sync.Mutex
	inputs []*SourceNode
}

// Stream returns stream with single mixed audio track
func (d *Destination) Stream() *media.Stream {
	return d.stream
}

// Inputs returns number of connected source nodes
func (d *Destination) Inputs() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inputs)
}

func (d *Destination) addInput(n *SourceNode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if slices.Contains(d.inputs, n) {
		return
	}
	d.inputs = append(d.inputs, n)
}

func (d *Destination) removeInput(n *SourceNode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i := slices.Index(d.inputs, n); i >= 0 {
		d.inputs = slices.Delete(d.inputs, i, i+1)
	}
}

func (d *Destination) snapshotInputs() []*SourceNode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.inputs)
}
