// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type config struct {
	Width    int
	Height   int
	FPS      int
	Duration time.Duration
	Rate     int

	Image string
	Wav   string

	OutWav string
	OutPNG string

	LogLevel string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("width", 640)
	v.SetDefault("height", 360)
	v.SetDefault("fps", 25)
	v.SetDefault("duration", 5*time.Second)
	v.SetDefault("audio.rate", 48000)
	v.SetDefault("source.image", "")
	v.SetDefault("source.wav", "")
	v.SetDefault("output.wav", "merged.wav")
	v.SetDefault("output.png", "merged.png")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("STREAMMERGE")
	v.AutomaticEnv()
	v.BindEnv("log.level", "LOG_LEVEL", "STREAMMERGE_LOG_LEVEL")
	v.BindEnv("output.wav", "STREAMMERGE_OUTPUT_WAV")
	v.BindEnv("output.png", "STREAMMERGE_OUTPUT_PNG")
	v.BindEnv("source.image", "STREAMMERGE_SOURCE_IMAGE")
	v.BindEnv("source.wav", "STREAMMERGE_SOURCE_WAV")
	v.BindEnv("audio.rate", "STREAMMERGE_AUDIO_RATE")

	v.SetConfigName("streammerge")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/streammerge")
	return v
}

// loadConfig reads optional config file and flags. Flags override env and file
func loadConfig(v *viper.Viper, flags *pflag.FlagSet) (config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	bind := map[string]string{
		"width":        "width",
		"height":       "height",
		"fps":          "fps",
		"duration":     "duration",
		"audio.rate":   "rate",
		"source.image": "image",
		"source.wav":   "wav",
		"output.wav":   "out-wav",
		"output.png":   "out-png",
		"log.level":    "log-level",
	}
	for key, flag := range bind {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return config{}, err
		}
	}

	c := config{
		Width:    v.GetInt("width"),
		Height:   v.GetInt("height"),
		FPS:      v.GetInt("fps"),
		Duration: v.GetDuration("duration"),
		Rate:     v.GetInt("audio.rate"),
		Image:    v.GetString("source.image"),
		Wav:      v.GetString("source.wav"),
		OutWav:   v.GetString("output.wav"),
		OutPNG:   v.GetString("output.png"),
		LogLevel: v.GetString("log.level"),
	}
	if c.Duration <= 0 {
		return c, fmt.Errorf("duration must be positive, got %s", c.Duration)
	}
	return c, nil
}
