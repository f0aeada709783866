package main

import (
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/emsaa/cli"
	"github.com/user-none/emsaa/emu"
	"github.com/user-none/emsaa/saa1099"
	"github.com/user-none/emsaa/wavwriter"
)

const outputSampleRate = 48000

func main() {
	progPath := flag.String("prog", "", "Z80 program binary that drives the SAA1099 through ports 0x01FF/0x00FF")
	orgFlag := flag.String("org", "0x8000", "load and start address of -prog")
	vgmPath := flag.String("vgm", "", "VGM or VGZ file with SAA1099 writes")
	modelFlag := flag.String("model", "48k", "machine timing: 48k, 128k, or pentagon")
	loops := flag.Int("loops", 0, "extra passes through the VGM loop section after the first playthrough (0 = loop forever; headless defaults to 1)")
	wavPath := flag.String("wav", "", "write the rendered audio to this WAV file (headless)")
	frames := flag.Int("frames", 500, "frames to render headless (a VGM stops earlier when it ends)")
	headless := flag.Bool("headless", false, "render without a window or audio device")
	volume := flag.Float64("volume", 1.0, "playback volume, 0.0 to 1.0")
	flag.Parse()

	if (*progPath == "") == (*vgmPath == "") {
		log.Fatal("Exactly one of -prog or -vgm is required. Usage: emsaa -prog <file> | -vgm <file>")
	}

	model, err := emu.ParseModel(*modelFlag)
	if err != nil {
		log.Fatalf("Invalid model: %v", err)
	}

	if *headless && *loops == 0 {
		*loops = 1
	}

	var source emu.Source
	if *progPath != "" {
		source = loadProgram(*progPath, *orgFlag, model)
	} else {
		source = loadVGM(*vgmPath, model, *loops)
	}

	if *headless {
		if *wavPath == "" {
			log.Fatal("-headless requires -wav")
		}
		if err := render(source, *wavPath, *frames); err != nil {
			log.Fatalf("Render failed: %v", err)
		}
		return
	}

	ebiten.SetWindowSize(emu.ScreenWidth*2, emu.ScreenHeight*2)
	ebiten.SetWindowTitle(emu.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	runner := cli.NewRunner(source, *volume)
	defer runner.Close()

	if err := ebiten.RunGame(runner); err != nil {
		log.Fatal(err)
	}
}

func loadProgram(path, org string, model emu.Model) emu.Source {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to load program: %v", err)
	}
	origin, err := strconv.ParseUint(org, 0, 16)
	if err != nil {
		log.Fatalf("Invalid origin %q: %v", org, err)
	}
	m, err := emu.NewMachine(data, uint16(origin), model)
	if err != nil {
		log.Fatalf("Failed to initialize machine: %v", err)
	}
	return m
}

func loadVGM(path string, model emu.Model, loops int) emu.Source {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to load VGM: %v", err)
	}
	f, err := emu.ParseVGM(data)
	if err != nil {
		log.Fatalf("Failed to parse VGM: %v", err)
	}
	if len(f.Events) == 0 {
		log.Printf("Warning: %s contains no SAA1099 writes", path)
	}
	return emu.NewVGMPlayer(f, saa1099.New(), model, loops)
}

// render runs source for up to frames frames and saves the output.
func render(source emu.Source, path string, frames int) error {
	w, err := wavwriter.New(path, outputSampleRate, 2)
	if err != nil {
		return err
	}

	done, _ := source.(interface{ Done() bool })
	for i := 0; i < frames; i++ {
		if done != nil && done.Done() {
			break
		}
		source.RunFrame()
		w.Write(source.GetAudioSamples())
	}

	log.Printf("Writing %d frames of audio to %s", w.Frames(), path)
	return w.Close()
}
