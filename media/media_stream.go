// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package media

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Stream groups tracks of single media source. ID is identity of stream and it is
// used to detect that two registrations refer to same source.
type Stream struct {
	id string

	mu     sync.RWMutex
	tracks []Track
}

// NewStream creates stream with random identity
func NewStream(tracks ...Track) *Stream {
	return NewStreamWithID(uuid.NewString(), tracks...)
}

// NewStreamWithID creates stream with given identity. Empty id means stream has no identity.
func NewStreamWithID(id string, tracks ...Track) *Stream {
	s := &Stream{id: id}
	for _, t := range tracks {
		s.AddTrack(t)
	}
	return s
}

func (s *Stream) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

func (s *Stream) Tracks() []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tracks)
}

func (s *Stream) AudioTracks() []AudioTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tracks []AudioTrack
	for _, t := range s.tracks {
		if at, ok := t.(AudioTrack); ok && t.Kind() == KindAudio {
			tracks = append(tracks, at)
		}
	}
	return tracks
}

func (s *Stream) VideoTracks() []VideoTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tracks []VideoTrack
	for _, t := range s.tracks {
		if vt, ok := t.(VideoTrack); ok && t.Kind() == KindVideo {
			tracks = append(tracks, vt)
		}
	}
	return tracks
}

// AddTrack adds track to stream. Adding same track twice is noop
func (s *Stream) AddTrack(t Track) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tr := range s.tracks {
		if tr.ID() == t.ID() {
			return
		}
	}
	s.tracks = append(s.tracks, t)
}

// RemoveTrack removes track from stream. Track is not stopped
func (s *Stream) RemoveTrack(t Track) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tr := range s.tracks {
		if tr.ID() == t.ID() {
			s.tracks = slices.Delete(s.tracks, i, i+1)
			return true
		}
	}
	return false
}

// Stop stops all tracks
func (s *Stream) Stop() {
	for _, t := range s.Tracks() {
		t.Stop()
	}
}
