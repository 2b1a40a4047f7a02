// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package source

import "github.com/emiago/streammerge/media"

// NewStream builds stream from video and audio track. Any of them can be nil
func NewStream(video media.VideoTrack, audio media.AudioTrack) *media.Stream {
	s := media.NewStream()
	if video != nil {
		s.AddTrack(video)
	}
	if audio != nil {
		s.AddTrack(audio)
	}
	return s
}
