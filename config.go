package main

import (
	"github.com/xyproto/env/v2"
)

// Config holds the defaults taken from the environment. Command line flags
// override them.
type Config struct {
	Arch    string // JINGLE_ARCH
	OS      string // JINGLE_OS
	Verbose bool   // JINGLE_VERBOSE
	NoColor bool   // NO_COLOR
}

func configFromEnv() Config {
	return Config{
		Arch:    env.Str("JINGLE_ARCH", "x86_64"),
		OS:      env.Str("JINGLE_OS", "sysv"),
		Verbose: env.Bool("JINGLE_VERBOSE"),
		NoColor: env.Has("NO_COLOR"),
	}
}
