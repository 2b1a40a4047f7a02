// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package media

import (
	"errors"
	"io"
)

// ReadAll reads until EOF with sampleSize chunks
func ReadAll(reader io.Reader, sampleSize int) ([]byte, error) {
	total := []byte{}
	buf := make([]byte, sampleSize)
	for {
		n, err := reader.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		total = append(total, buf[:n]...)
	}
	return total, nil
}

// ReadFrames reads exactly n reads of sampleSize. Useful with endless live tracks
func ReadFrames(reader io.Reader, sampleSize int, n int) ([]byte, error) {
	total := make([]byte, 0, sampleSize*n)
	buf := make([]byte, sampleSize)
	for i := 0; i < n; i++ {
		nn, err := reader.Read(buf)
		if err != nil {
			return total, err
		}
		total = append(total, buf[:nn]...)
	}
	return total, nil
}

func WriteAll(w io.Writer, data []byte, sampleSize int) (int64, error) {
	var total int64
	for i := 0; i < len(data); i += sampleSize {
		off := min(len(data), i+sampleSize)
		n, err := w.Write(data[i:off])
		if err != nil {
			return 0, err
		}
		total += int64(n)
	}
	return total, nil
}

// CopyWithBuf is simple and strict compared to io.CopyBuffer. ReadFrom and WriteTo is not considered
// as audio tracks are expected to be read frame by frame
func CopyWithBuf(reader io.Reader, writer io.Writer, payloadBuf []byte) (int64, error) {
	var totalWritten int64
	for {
		n, err := reader.Read(payloadBuf)
		if err != nil {
			return totalWritten, err
		}
		nn, err := writer.Write(payloadBuf[:n])
		if err != nil {
			return totalWritten, err
		}
		totalWritten += int64(nn)
		if nn < n {
			return totalWritten, io.ErrShortWrite
		}
	}
}
