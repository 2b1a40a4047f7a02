// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

// Package playback hosts hidden playback elements which turn streams into drawable frames.
package playback

import (
	"errors"
	"slices"
	"sync"

	"github.com/emiago/streammerge/media"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrContainerClosed = errors.New("playback: container closed")

// Container keeps attached elements. Closing container closes all of them.
type Container struct {
	log zerolog.Logger

	mu       sync.Mutex
	elements []*Element
	closed   bool
}

func NewContainer() *Container {
	return &Container{
		log: log.Logger.With().Str("caller", "playback.Container").Logger(),
	}
}

// Create creates element bound to stream and attaches it to container
func (c *Container) Create(s *media.Stream) (*Element, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrContainerClosed
	}

	e := newElement(s, c.log)
	c.elements = append(c.elements, e)
	return e, nil
}

// Remove detaches element and stops its playback.
// Returns false if element is not attached
func (c *Container) Remove(e *Element) bool {
	c.mu.Lock()
	i := slices.Index(c.elements, e)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.elements = slices.Delete(c.elements, i, i+1)
	c.mu.Unlock()

	e.close()
	return true
}

// Len returns number of attached elements
func (c *Container) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.elements)
}

func (c *Container) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	elements := c.elements
	c.elements = nil
	c.mu.Unlock()

	for _, e := range elements {
		e.close()
	}
	return nil
}
