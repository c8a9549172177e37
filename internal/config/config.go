// Package config holds the tuning knobs for document structuring and playback.
//
// The tier tables are empirically chosen product constants, not structural
// invariants, so they live here as defaults that a YAML file can override.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ORPTier maps a punctuation-stripped word length to a fixation index.
// Tiers are matched in order against MaxLen; lengths beyond the last tier
// use ORPLongFactor.
type ORPTier struct {
	MaxLen int `yaml:"max_len"`
	Index  int `yaml:"index"`
}

// DelayTier maps a raw word length to a base dwell weight in milliseconds.
type DelayTier struct {
	MaxLen  int `yaml:"max_len"`
	DelayMs int `yaml:"delay_ms"`
}

// Tokenizer controls word unit annotation.
type Tokenizer struct {
	ORPTiers          []ORPTier   `yaml:"orp_tiers"`
	ORPLongFactor     float64     `yaml:"orp_long_factor"`
	DelayTiers        []DelayTier `yaml:"delay_tiers"`
	DefaultDelayMs    int         `yaml:"default_delay_ms"`
	SentencePauseMs   int         `yaml:"sentence_pause_ms"`
	ClausePauseMs     int         `yaml:"clause_pause_ms"`
	LongWordThreshold int         `yaml:"long_word_threshold"`
}

// Playback controls the timing loop and speed bounds.
type Playback struct {
	DefaultWPM         int     `yaml:"default_wpm"`
	MinWPM             int     `yaml:"min_wpm"`
	MaxWPM             int     `yaml:"max_wpm"`
	StepWPM            int     `yaml:"step_wpm"`
	LongWordMultiplier float64 `yaml:"long_word_multiplier"`
	BulletPauseMs      int     `yaml:"bullet_pause_ms"`
	ParagraphPauseMs   int     `yaml:"paragraph_pause_ms"`

	// ReferenceDelayMs is the base delay treated as weight 1.0 when a
	// word's dwell time is derived from the WPM setting.
	ReferenceDelayMs int `yaml:"reference_delay_ms"`

	// MinFrameMs floors every scheduled frame so a degenerate
	// configuration can never produce a zero-delay loop.
	MinFrameMs int `yaml:"min_frame_ms"`
}

// Structuring bounds accepted document sizes in words.
type Structuring struct {
	MinWords int `yaml:"min_words"`
	MaxWords int `yaml:"max_words"`
}

// Config is the full application configuration.
type Config struct {
	Tokenizer   Tokenizer   `yaml:"tokenizer"`
	Playback    Playback    `yaml:"playback"`
	Structuring Structuring `yaml:"structuring"`
}

// Default returns the shipped tuning constants.
func Default() *Config {
	return &Config{
		Tokenizer: Tokenizer{
			ORPTiers: []ORPTier{
				{MaxLen: 3, Index: 0},
				{MaxLen: 6, Index: 1},
				{MaxLen: 9, Index: 2},
				{MaxLen: 13, Index: 3},
				{MaxLen: 16, Index: 4},
			},
			ORPLongFactor: 0.3,
			DelayTiers: []DelayTier{
				{MaxLen: 3, DelayMs: 200},
				{MaxLen: 6, DelayMs: 250},
				{MaxLen: 9, DelayMs: 300},
			},
			DefaultDelayMs:    350,
			SentencePauseMs:   300,
			ClausePauseMs:     150,
			LongWordThreshold: 8,
		},
		Playback: Playback{
			DefaultWPM:         300,
			MinWPM:             100,
			MaxWPM:             600,
			StepWPM:            25,
			LongWordMultiplier: 1.5,
			BulletPauseMs:      100,
			ParagraphPauseMs:   200,
			ReferenceDelayMs:   250,
			MinFrameMs:         1,
		},
		Structuring: Structuring{
			MinWords: 1,
			MaxWords: 1_000_000,
		},
	}
}

// Load reads a YAML file over the defaults. A missing path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would break the timing loop or the
// structuring invariants.
func (c *Config) Validate() error {
	if c.Playback.MinWPM <= 0 {
		return fmt.Errorf("playback.min_wpm must be positive, got %d", c.Playback.MinWPM)
	}
	if c.Playback.MaxWPM < c.Playback.MinWPM {
		return fmt.Errorf("playback.max_wpm %d below min_wpm %d", c.Playback.MaxWPM, c.Playback.MinWPM)
	}
	if c.Playback.StepWPM <= 0 {
		return fmt.Errorf("playback.step_wpm must be positive, got %d", c.Playback.StepWPM)
	}
	if c.Playback.LongWordMultiplier <= 0 {
		return fmt.Errorf("playback.long_word_multiplier must be positive, got %v", c.Playback.LongWordMultiplier)
	}
	if c.Playback.ReferenceDelayMs <= 0 {
		return fmt.Errorf("playback.reference_delay_ms must be positive, got %d", c.Playback.ReferenceDelayMs)
	}
	if c.Playback.MinFrameMs < 1 {
		return fmt.Errorf("playback.min_frame_ms must be at least 1, got %d", c.Playback.MinFrameMs)
	}
	if c.Tokenizer.ORPLongFactor <= 0 || c.Tokenizer.ORPLongFactor >= 1 {
		return fmt.Errorf("tokenizer.orp_long_factor must be in (0, 1), got %v", c.Tokenizer.ORPLongFactor)
	}
	if c.Tokenizer.LongWordThreshold <= 0 {
		return fmt.Errorf("tokenizer.long_word_threshold must be positive, got %d", c.Tokenizer.LongWordThreshold)
	}
	if c.Structuring.MinWords < 1 {
		return fmt.Errorf("structuring.min_words must be at least 1, got %d", c.Structuring.MinWords)
	}
	if c.Structuring.MaxWords < c.Structuring.MinWords {
		return fmt.Errorf("structuring.max_words %d below min_words %d", c.Structuring.MaxWords, c.Structuring.MinWords)
	}
	return nil
}
