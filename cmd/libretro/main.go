package main

import (
	libretro "github.com/user-none/eblitui/libretro"
	"github.com/user-none/emsaa/adapter"
)

func init() {
	// No retropad bindings; playback is not interactive.
	libretro.RegisterFactory(&adapter.Factory{}, nil)
}

func main() {}
