// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package media

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacer(t *testing.T) {
	p := NewPacer(5 * time.Millisecond)
	assert.Equal(t, 5*time.Millisecond, p.Interval())

	done := make(chan struct{})
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(context.Background(), done))
	}
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p2 := NewPacer(time.Hour)
	require.ErrorIs(t, p2.Wait(ctx, done), context.Canceled)

	close(done)
	require.ErrorIs(t, p2.Wait(context.Background(), done), io.EOF)

	p.Stop()
	require.ErrorIs(t, p.Wait(context.Background(), nil), io.EOF)
}
