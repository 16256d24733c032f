package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/gesturelock/internal/gesture"
	"github.com/banshee-data/gesturelock/internal/lock"
)

// DefaultConfigPath is the path to the canonical lock defaults file.
const DefaultConfigPath = "config/lock.defaults.json"

// LockConfig is the on-disk lock configuration. Every field is optional;
// the Get* accessors fall back to the board defaults for unset fields.
type LockConfig struct {
	// Capture params
	SequenceCapacity *int    `json:"sequence_capacity,omitempty"`
	SampleInterval   *string `json:"sample_interval,omitempty"`  // duration string like "20ms"
	CaptureDuration  *string `json:"capture_duration,omitempty"` // duration string like "5s"

	// Matching params
	MatchTolerance  *float64 `json:"match_tolerance,omitempty"`
	AcceptThreshold *float64 `json:"accept_threshold,omitempty"`

	// Lockout params
	MaxAttempts     *int    `json:"max_attempts,omitempty"`
	LockoutDuration *string `json:"lockout_duration,omitempty"` // duration string like "5m"

	RejectDegenerateEnroll *bool `json:"reject_degenerate_enroll,omitempty"`

	// Polling loop params
	PollInterval  *string `json:"poll_interval,omitempty"`
	EdgeTriggered *bool   `json:"edge_triggered,omitempty"`
}

// EmptyLockConfig returns a LockConfig with all fields unset.
func EmptyLockConfig() *LockConfig {
	return &LockConfig{}
}

// LoadLockConfig loads a LockConfig from a JSON file. The file must have a
// .json extension and be under 1MB.
func LoadLockConfig(path string) (*LockConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyLockConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents up to the repo root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *LockConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadLockConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the set fields are well formed. Range checks on the
// resolved values happen in LockSettings.
func (c *LockConfig) Validate() error {
	for name, v := range map[string]*string{
		"sample_interval":  c.SampleInterval,
		"capture_duration": c.CaptureDuration,
		"lockout_duration": c.LockoutDuration,
		"poll_interval":    c.PollInterval,
	} {
		if v == nil || *v == "" {
			continue
		}
		if _, err := time.ParseDuration(*v); err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
		}
	}

	if c.MatchTolerance != nil && *c.MatchTolerance <= 0 {
		return fmt.Errorf("match_tolerance must be positive, got %f", *c.MatchTolerance)
	}
	if c.AcceptThreshold != nil && (*c.AcceptThreshold <= 0 || *c.AcceptThreshold > 1) {
		return fmt.Errorf("accept_threshold must be in (0, 1], got %f", *c.AcceptThreshold)
	}
	if c.SequenceCapacity != nil && *c.SequenceCapacity < 1 {
		return fmt.Errorf("sequence_capacity must be at least 1, got %d", *c.SequenceCapacity)
	}
	if c.MaxAttempts != nil && *c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", *c.MaxAttempts)
	}
	return nil
}

func durationOr(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def // default on parse error
	}
	return d
}

// GetSequenceCapacity returns the sequence_capacity value or the default.
func (c *LockConfig) GetSequenceCapacity() int {
	if c.SequenceCapacity == nil {
		return lock.DefaultConfig().Capture.Capacity
	}
	return *c.SequenceCapacity
}

// GetSampleInterval returns the sample_interval value or the default.
func (c *LockConfig) GetSampleInterval() time.Duration {
	return durationOr(c.SampleInterval, lock.DefaultConfig().Capture.SampleInterval)
}

// GetCaptureDuration returns the capture_duration value or the default.
func (c *LockConfig) GetCaptureDuration() time.Duration {
	return durationOr(c.CaptureDuration, lock.DefaultConfig().Capture.MaxDuration)
}

// GetMatchTolerance returns the match_tolerance value or the default.
func (c *LockConfig) GetMatchTolerance() float64 {
	if c.MatchTolerance == nil {
		return lock.DefaultConfig().Tolerance
	}
	return *c.MatchTolerance
}

// GetAcceptThreshold returns the accept_threshold value or the default.
func (c *LockConfig) GetAcceptThreshold() float64 {
	if c.AcceptThreshold == nil {
		return lock.DefaultConfig().AcceptThreshold
	}
	return *c.AcceptThreshold
}

// GetMaxAttempts returns the max_attempts value or the default.
func (c *LockConfig) GetMaxAttempts() int {
	if c.MaxAttempts == nil {
		return lock.DefaultConfig().MaxAttempts
	}
	return *c.MaxAttempts
}

// GetLockoutDuration returns the lockout_duration value or the default.
func (c *LockConfig) GetLockoutDuration() time.Duration {
	return durationOr(c.LockoutDuration, lock.DefaultConfig().LockoutDuration)
}

// GetRejectDegenerateEnroll returns the reject_degenerate_enroll value or
// the default.
func (c *LockConfig) GetRejectDegenerateEnroll() bool {
	if c.RejectDegenerateEnroll == nil {
		return lock.DefaultConfig().RejectDegenerateEnroll
	}
	return *c.RejectDegenerateEnroll
}

// GetPollInterval returns the poll_interval value or the default.
func (c *LockConfig) GetPollInterval() time.Duration {
	return durationOr(c.PollInterval, lock.DefaultPollInterval)
}

// GetEdgeTriggered returns the edge_triggered value or the default.
func (c *LockConfig) GetEdgeTriggered() bool {
	if c.EdgeTriggered == nil {
		return true
	}
	return *c.EdgeTriggered
}

// LockSettings resolves the file into a validated lock.Config.
func (c *LockConfig) LockSettings() (lock.Config, error) {
	cfg := lock.Config{
		Capture: gesture.CaptureParams{
			Capacity:       c.GetSequenceCapacity(),
			SampleInterval: c.GetSampleInterval(),
			MaxDuration:    c.GetCaptureDuration(),
		},
		Tolerance:              c.GetMatchTolerance(),
		AcceptThreshold:        c.GetAcceptThreshold(),
		MaxAttempts:            c.GetMaxAttempts(),
		LockoutDuration:        c.GetLockoutDuration(),
		RejectDegenerateEnroll: c.GetRejectDegenerateEnroll(),
	}
	if err := cfg.Validate(); err != nil {
		return lock.Config{}, err
	}
	return cfg, nil
}

// RunnerOptions returns the polling loop settings from the file.
func (c *LockConfig) RunnerOptions() lock.RunnerOptions {
	return lock.RunnerOptions{
		PollInterval:  c.GetPollInterval(),
		EdgeTriggered: c.GetEdgeTriggered(),
	}
}
