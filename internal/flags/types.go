package flags

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("flag not found")

// Well-known keys consulted by the API layer.
const (
	// KeySwapsEnabled gates swap execution. Missing means enabled.
	KeySwapsEnabled = "swaps.enabled"
	// KeyInitEnabled gates pool initialization.
	KeyInitEnabled = "init.enabled"
)

// Flag is a runtime boolean switch stored in Redis.
type Flag struct {
	Key       string    `json:"key"`
	Value     bool      `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
