// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package streammerge

import (
	"sync"

	"github.com/emiago/streammerge/audio"
	"github.com/emiago/streammerge/media"
)

// mixGraph wires audio of streams into single destination.
// It has no notion of mute, muted streams are simply never tapped.
type mixGraph struct {
	ctx  *audio.Context
	dest *audio.Destination

	mu   sync.Mutex
	taps map[string][]*audio.SourceNode
}

func newMixGraph(factory audio.ContextFactory) (*mixGraph, error) {
	ctx, err := factory()
	if err != nil {
		return nil, err
	}
	dest, err := ctx.CreateMediaStreamDestination()
	if err != nil {
		ctx.Close()
		return nil, err
	}
	return &mixGraph{
		ctx:  ctx,
		dest: dest,
		taps: make(map[string][]*audio.SourceNode),
	}, nil
}

func (g *mixGraph) tap(s *media.Stream) error {
	node, err := g.ctx.CreateMediaStreamSource(s)
	if err != nil {
		return err
	}
	if err := node.Connect(g.dest); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.taps[s.ID()] = append(g.taps[s.ID()], node)
	return nil
}

func (g *mixGraph) untap(id string) {
	g.mu.Lock()
	nodes := g.taps[id]
	delete(g.taps, id)
	g.mu.Unlock()

	for _, n := range nodes {
		n.Disconnect()
	}
}

// output is single mixed track
func (g *mixGraph) output() media.AudioTrack {
	return g.dest.Stream().AudioTracks()[0]
}

// inputs is number of sources currently mixed
func (g *mixGraph) inputs() int {
	return g.dest.Inputs()
}

func (g *mixGraph) close() error {
	return g.ctx.Close()
}
