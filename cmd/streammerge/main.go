// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"time"

	"github.com/emiago/streammerge"
	"github.com/emiago/streammerge/audio"
	"github.com/emiago/streammerge/media"
	"github.com/emiago/streammerge/playback"
	"github.com/emiago/streammerge/source"
	"github.com/gogpu/gg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "streammerge",
		Short: "Merge test sources into single stream and record it",
		Long: `streammerge composites a background test pattern and a picture in picture
source into one canvas, mixes their audio and records the result as WAV and PNG snapshot.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(v, cmd.Flags())
			if err != nil {
				return err
			}
			setupLogger(conf.LogLevel)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			if err := run(ctx, conf); err != nil {
				log.Error().Err(err).Msg("Merge finished with error")
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Int("width", 640, "Output width")
	f.Int("height", 360, "Output height")
	f.Int("fps", 25, "Output frame rate")
	f.Duration("duration", 5*time.Second, "How long to record")
	f.Int("rate", 48000, "Audio sample rate")
	f.String("image", "", "Image file used as picture in picture source")
	f.String("wav", "", "16 bit PCM WAV used as background audio")
	f.String("out-wav", "merged.wav", "Output WAV file")
	f.String("out-png", "merged.png", "Output PNG snapshot")
	f.String("log-level", "info", "Log level")
	return cmd
}

func setupLogger(level string) {
	lev, err := zerolog.ParseLevel(level)
	if err != nil || lev == zerolog.NoLevel {
		lev = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMicro
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.StampMicro,
	}).With().Timestamp().Logger().Level(lev)
}

func run(ctx context.Context, conf config) error {
	format := media.AudioFormat{
		SampleRate:  conf.Rate,
		NumChannels: 1,
		FrameDur:    media.DefaultAudioFormat.FrameDur,
	}

	m, err := streammerge.NewMerger(
		streammerge.WithWidth(conf.Width),
		streammerge.WithHeight(conf.Height),
		streammerge.WithFPS(conf.FPS),
		streammerge.WithAudioContextFactory(func() (*audio.Context, error) {
			return audio.NewContext(format), nil
		}),
	)
	if err != nil {
		return err
	}
	defer m.Destroy()

	background, err := backgroundStream(conf, format)
	if err != nil {
		return err
	}
	defer background.Stop()

	pip, err := pipStream(conf, format)
	if err != nil {
		return err
	}
	defer pip.Stop()

	if err := m.AddStream(background); err != nil {
		return err
	}

	x, y := float64(m.Width())/2, float64(m.Height())/2
	w, h := float64(m.Width())/3, float64(m.Height())/3
	if err := m.AddStream(pip,
		streammerge.WithPosition(x, y),
		streammerge.WithSize(w, h),
		streammerge.WithDraw(framedDraw(x, y, w, h)),
	); err != nil {
		return err
	}

	if err := m.Start(); err != nil {
		return err
	}
	rec, err := m.Recording()
	if err != nil {
		return err
	}
	log.Info().Str("result", m.Result().ID()).Dur("duration", conf.Duration).Msg("Recording merged stream")

	recCtx, recCancel := context.WithTimeout(ctx, conf.Duration)
	defer recCancel()

	g, gctx := errgroup.WithContext(recCtx)
	g.Go(func() error {
		f, err := os.Create(conf.OutWav)
		if err != nil {
			return err
		}
		defer f.Close()

		n, err := rec.RecordAudio(gctx, f)
		log.Info().Str("file", conf.OutWav).Int64("bytes", n).Msg("Audio recorded")
		return err
	})
	g.Go(func() error {
		// Snapshot near the end, when both sources are drawn
		select {
		case <-gctx.Done():
		case <-time.After(conf.Duration * 3 / 4):
		}

		f, err := os.Create(conf.OutPNG)
		if err != nil {
			return err
		}
		defer f.Close()

		snapCtx, snapCancel := context.WithTimeout(context.Background(), time.Second)
		defer snapCancel()
		if err := rec.Snapshot(snapCtx, f); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		log.Info().Str("file", conf.OutPNG).Msg("Snapshot written")
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Uint64("frames", m.Frames()).Msg("Merge done")
	return nil
}

func backgroundStream(conf config, format media.AudioFormat) (*media.Stream, error) {
	video := source.NewTestPattern(conf.Width, conf.Height, conf.FPS, color.RGBA{R: 20, G: 40, B: 120, A: 255})
	if conf.Wav == "" {
		return source.NewStream(video, source.NewTone(440, format)), nil
	}

	wav, err := source.OpenWav(conf.Wav)
	if err != nil {
		video.Stop()
		return nil, err
	}
	if f := wav.Format(); f.SampleRate != format.SampleRate || f.NumChannels != format.NumChannels {
		wav.Stop()
		video.Stop()
		return nil, fmt.Errorf("%w: wav is %d Hz %d channels, mix is %d Hz mono", audio.ErrFormatMismatch, f.SampleRate, f.NumChannels, format.SampleRate)
	}
	return source.NewStream(video, wav), nil
}

func pipStream(conf config, format media.AudioFormat) (*media.Stream, error) {
	tone := source.NewTone(660, format)
	if conf.Image == "" {
		video := source.NewTestPattern(conf.Width/3, conf.Height/3, conf.FPS, color.RGBA{R: 160, G: 30, B: 30, A: 255})
		return source.NewStream(video, tone), nil
	}

	video, err := source.LoadImage(conf.Image, conf.FPS)
	if err != nil {
		tone.Stop()
		return nil, err
	}
	return source.NewStream(video, tone), nil
}

// framedDraw draws latest element frame with border around it
func framedDraw(x, y, w, h float64) streammerge.DrawFunc {
	return func(ctx context.Context, s streammerge.Surface, e *playback.Element) error {
		frame := e.Frame()
		if frame == nil {
			return nil
		}
		s.DrawImage(frame, x, y, w, h)

		var err error
		s.Draw(func(dc *gg.Context) {
			dc.SetRGB(1, 0.8, 0)
			dc.SetLineWidth(3)
			dc.DrawRectangle(x, y, w, h)
			err = dc.Stroke()
		})
		return err
	}
}
