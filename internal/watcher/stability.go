package watcher

import (
	"context"
	"errors"
	"os"
	"time"
)

// ErrFileNotFound is returned when the file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrFileUnstable is returned when the file does not stabilize within the timeout.
var ErrFileUnstable = errors.New("file did not stabilize within timeout")

// StabilityChecker waits for an attachment's size to stop changing, so a
// file still being written by the editor is not moved.
type StabilityChecker struct {
	threshold time.Duration // Time the file size must remain unchanged
	timeout   time.Duration // Maximum time to wait for stability
	interval  time.Duration // How often to check file size
}

// NewStabilityChecker creates a new StabilityChecker with the specified threshold.
// Default timeout is 30 seconds, default check interval is threshold/4.
func NewStabilityChecker(threshold time.Duration) *StabilityChecker {
	interval := threshold / 4
	if interval < 50*time.Millisecond {
		interval = 50 * time.Millisecond
	}
	return NewStabilityCheckerWithOptions(threshold, 30*time.Second, interval)
}

// NewStabilityCheckerWithOptions creates a StabilityChecker with custom timeout and interval.
func NewStabilityCheckerWithOptions(threshold, timeout, interval time.Duration) *StabilityChecker {
	return &StabilityChecker{
		threshold: threshold,
		timeout:   timeout,
		interval:  interval,
	}
}

// WaitForStable blocks until the file size is stable for the threshold
// duration. It fails if the file disappears, cannot be accessed, does not
// stabilize within the timeout, or ctx is done.
func (s *StabilityChecker) WaitForStable(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	lastSize, err := getFileSize(path)
	if err != nil {
		return err
	}
	lastChangeTime := time.Now()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrFileUnstable
			}
			return ctx.Err()
		case <-ticker.C:
			currentSize, err := getFileSize(path)
			if err != nil {
				return err
			}

			if currentSize != lastSize {
				lastSize = currentSize
				lastChangeTime = time.Now()
			} else if time.Since(lastChangeTime) >= s.threshold {
				return nil
			}
		}
	}
}

// getFileSize returns the size of the file at the given path.
func getFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrFileNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}
