// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package audio

import (
	"encoding/binary"
	"math"
)

// PCMMix sums 16 bit little endian samples of mixedBuf and readBuf into dstBuf.
// Sum is saturated to int16 range. dstBuf can be same slice as mixedBuf
func PCMMix(dstBuf []byte, mixedBuf []byte, readBuf []byte) {
	n := len(readBuf) &^ 1
	for i := 0; i < n; i += 2 {
		current := int16(binary.LittleEndian.Uint16(mixedBuf[i:]))
		frame := int16(binary.LittleEndian.Uint16(readBuf[i:]))

		mixed32 := int32(current) + int32(frame)
		var mixed int16
		switch {
		case mixed32 > math.MaxInt16:
			mixed = math.MaxInt16
		case mixed32 < math.MinInt16:
			mixed = math.MinInt16
		default:
			mixed = int16(mixed32)
		}

		binary.LittleEndian.PutUint16(dstBuf[i:], uint16(mixed))
	}
}

// PCMSilent reports are all samples zero
func PCMSilent(pcm []byte) bool {
	for _, b := range pcm {
		if b != 0 {
			return false
		}
	}
	return true
}
