// Package storage provides the named key-value slots the waitlist keeps its
// serialised collection in. Each Slot holds exactly one value under one key.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

//go:generate mockgen -source=slot.go -destination=mock_slot.go -package=storage

// Slot is a single named value in some host storage facility.
type Slot interface {
	// Key is the name the value is stored under.
	Key() string
	// Read returns (nil, false, nil) when nothing has been written yet.
	Read(ctx context.Context) ([]byte, bool, error)
	// Write replaces the whole value.
	Write(ctx context.Context, data []byte) error
	// Remove deletes the value. Removing an absent value is not an error.
	Remove(ctx context.Context) error
	// Ping reports whether the backing facility is reachable.
	Ping(ctx context.Context) error
}

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverDatabase = "database"
	DriverRedis    = "redis"
)

var (
	// ErrSlotUnavailable is returned while a slot refuses calls, e.g. with its circuit open.
	ErrSlotUnavailable = errors.New("storage: slot unavailable")
	ErrInvalidKey      = errors.New("storage: invalid slot key")
)

// ValidateKey rejects keys that cannot double as a file name or a row key.
func ValidateKey(key string) error {
	trimmed := strings.TrimSpace(key)
	switch {
	case trimmed == "":
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	case trimmed != key:
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidKey, key)
	case len(key) > 191:
		return fmt.Errorf("%w: longer than 191 bytes", ErrInvalidKey)
	case strings.ContainsAny(key, `/\`) || strings.Contains(key, ".."):
		return fmt.Errorf("%w: %q contains a path element", ErrInvalidKey, key)
	}
	return nil
}

// IsSupportedDriver reports whether name is one of the Driver* constants.
func IsSupportedDriver(name string) bool {
	switch name {
	case DriverMemory, DriverFile, DriverDatabase, DriverRedis:
		return true
	}
	return false
}
