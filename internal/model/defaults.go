package model

import "time"

// Shared defaults used by both the service and TUI binaries.
const (
	DefaultUpdateInterval = 2 * time.Second
	DefaultSkin           = "default"
	DefaultUploadDir      = "."
	DefaultAPIPort        = 3000
	DefaultQueryTimeout   = 10 * time.Second
)
