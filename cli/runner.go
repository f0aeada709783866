// Package cli runs an emu.Source in a window: the source plays on its own
// goroutine with audio-driven timing while Ebiten polls keys and draws the
// scope.
package cli

import (
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	emubridge "github.com/user-none/emsaa/bridge/ebiten"
	"github.com/user-none/emsaa/emu"
	"github.com/user-none/emsaa/ui"
)

// ADT buffer thresholds in bytes.
const (
	adtMinBuffer = 9600
	adtMaxBuffer = 19200
)

// Runner implements ebiten.Game around a Source.
//
// Keys: Space pauses and resumes, R resets the source, M toggles mute.
type Runner struct {
	source      emu.Source
	scope       *emubridge.Scope
	audioPlayer *ui.AudioPlayer

	emuControl        *ui.EmuControl
	sharedFramebuffer *ui.SharedFramebuffer
	emuDone           chan struct{}
}

// NewRunner starts playing source. A missing audio device is not fatal;
// the runner then paces on wall-clock time alone.
func NewRunner(source emu.Source, volume float64) *Runner {
	player, err := ui.NewAudioPlayer(volume)
	if err != nil {
		log.Printf("Warning: audio initialization failed: %v", err)
	}

	r := &Runner{
		source:            source,
		scope:             emubridge.NewScope(),
		audioPlayer:       player,
		emuControl:        ui.NewEmuControl(),
		sharedFramebuffer: ui.NewSharedFramebuffer(),
		emuDone:           make(chan struct{}),
	}

	go r.emulationLoop()

	return r
}

// Close stops the emulation goroutine and releases audio.
func (r *Runner) Close() {
	if r.emuControl != nil {
		r.emuControl.Stop()
		<-r.emuDone
	}

	if r.audioPlayer != nil {
		r.audioPlayer.Close()
		r.audioPlayer = nil
	}
}

// emulationLoop runs on a dedicated goroutine with ADT.
func (r *Runner) emulationLoop() {
	defer close(r.emuDone)

	timing := r.source.GetTiming()
	frameTime := time.Duration(float64(time.Second) / float64(timing.FPS))
	lastFrameTime := time.Now()

	for {
		if !r.emuControl.CheckPause() {
			return
		}

		if r.emuControl.TakeReset() {
			r.source.Reset()
			if r.audioPlayer != nil {
				r.audioPlayer.Flush()
			}
		}

		r.source.RunFrame()

		if r.audioPlayer != nil {
			r.audioPlayer.QueueSamples(r.source.GetAudioSamples())
		}

		r.sharedFramebuffer.Update(r.source.GetFramebuffer(), r.source.GetFramebufferStride())

		elapsed := time.Since(lastFrameTime)
		sleepTime := frameTime - elapsed

		if r.audioPlayer != nil {
			bufferLevel := r.audioPlayer.GetBufferLevel()
			if bufferLevel < adtMinBuffer {
				sleepTime = time.Duration(float64(sleepTime) * 0.9)
			} else if bufferLevel > adtMaxBuffer {
				sleepTime = time.Duration(float64(sleepTime) * 1.1)
			}
		}

		if sleepTime > time.Millisecond {
			time.Sleep(sleepTime)
		}

		lastFrameTime = time.Now()
	}
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	if !ebiten.IsFocused() {
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		r.emuControl.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		r.emuControl.RequestReset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) && r.audioPlayer != nil {
		r.audioPlayer.ToggleMute()
	}
	return nil
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	pixels, stride, height := r.sharedFramebuffer.Read()
	r.scope.Draw(screen, pixels, stride, height)
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return r.scope.Layout(outsideWidth, outsideHeight)
}
