package config

// Embedded API keys injected at build time via ldflags.
// These serve as defaults and can be overridden by environment
// variables or config file.
//
// Build with:
//
//	go build -ldflags "-X 'github.com/butinmaker/butinmaker/internal/config.EmbeddedTMDBKey=xxx'"
var EmbeddedTMDBKey string

// Version is set at build time with -X ...config.Version=.
var Version = "dev"
