//go:build !libretro && !ios

package main

import (
	"flag"
	"log"
	"strconv"

	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/emsaa/adapter"
	"github.com/user-none/emsaa/emu"
)

func main() {
	romPath := flag.String("rom", "", "path to a VGM/VGZ file or Z80 program (opens UI if not provided)")
	regionFlag := flag.String("region", "auto", "region: auto, ntsc, or pal")
	model128K := flag.Bool("128k", false, "use 128K timing for Z80 programs")
	flag.Parse()

	factory := &adapter.Factory{}

	if *romPath != "" {
		options := map[string]string{
			emu.OptionModel128K: strconv.FormatBool(*model128K),
		}
		if err := standalone.RunDirect(factory, *romPath, *regionFlag, options); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := standalone.Run(factory); err != nil {
		log.Fatal(err)
	}
}
