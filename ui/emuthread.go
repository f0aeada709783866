package ui

import (
	"sync"
	"time"

	"github.com/user-none/emsaa/emu"
)

// SharedFramebuffer hands the scope image from the emulation goroutine to
// Ebiten's Draw. The writer fills writePixels; Read snapshots them into
// readPixels so Draw never holds the lock while drawing.
type SharedFramebuffer struct {
	mu          sync.Mutex
	writePixels []byte
	readPixels  []byte
	stride      int
	height      int
}

// NewSharedFramebuffer allocates buffers for a full scope image.
func NewSharedFramebuffer() *SharedFramebuffer {
	size := emu.ScreenWidth * emu.ScreenHeight * 4
	return &SharedFramebuffer{
		writePixels: make([]byte, size),
		readPixels:  make([]byte, size),
	}
}

// Update copies a frame in from the emulation goroutine.
func (sf *SharedFramebuffer) Update(pixels []byte, stride int) {
	sf.mu.Lock()
	n := copy(sf.writePixels, pixels)
	sf.stride = stride
	sf.height = 0
	if stride > 0 {
		sf.height = n / stride
	}
	sf.mu.Unlock()
}

// Read returns a snapshot safe to use without the lock. height is 0 until
// the first Update.
func (sf *SharedFramebuffer) Read() (pixels []byte, stride, height int) {
	sf.mu.Lock()
	stride = sf.stride
	height = sf.height
	copy(sf.readPixels, sf.writePixels[:stride*height])
	pixels = sf.readPixels
	sf.mu.Unlock()
	return
}

// EmuControl coordinates the Ebiten thread and the emulation goroutine:
// pause/resume, stop, and resets that must run on the emulation side.
type EmuControl struct {
	mu       sync.Mutex
	pauseReq bool
	paused   bool
	stopReq  bool
	resetReq bool
	ackCh    chan struct{}
}

// NewEmuControl creates a control in the running state.
func NewEmuControl() *EmuControl {
	return &EmuControl{ackCh: make(chan struct{}, 1)}
}

// RequestPause blocks until the emulation goroutine has parked.
func (ec *EmuControl) RequestPause() {
	ec.mu.Lock()
	if ec.paused || ec.pauseReq || ec.stopReq {
		ec.mu.Unlock()
		return
	}
	ec.pauseReq = true
	ec.mu.Unlock()

	<-ec.ackCh
}

// RequestResume releases a paused emulation goroutine.
func (ec *EmuControl) RequestResume() {
	ec.mu.Lock()
	ec.pauseReq = false
	ec.paused = false
	ec.mu.Unlock()
}

// TogglePause pauses a running goroutine or resumes a paused one, and
// reports whether it is now paused.
func (ec *EmuControl) TogglePause() bool {
	if ec.IsPaused() {
		ec.RequestResume()
		return false
	}
	ec.RequestPause()
	return true
}

// RequestReset asks the emulation goroutine to reset its source before the
// next frame.
func (ec *EmuControl) RequestReset() {
	ec.mu.Lock()
	ec.resetReq = true
	ec.mu.Unlock()
}

// TakeReset reports and clears a pending reset request.
func (ec *EmuControl) TakeReset() bool {
	ec.mu.Lock()
	r := ec.resetReq
	ec.resetReq = false
	ec.mu.Unlock()
	return r
}

// CheckPause is called by the emulation goroutine between frames. While a
// pause is requested it acknowledges and waits. It returns false when the
// goroutine should exit.
func (ec *EmuControl) CheckPause() bool {
	ec.mu.Lock()
	if ec.stopReq {
		ec.mu.Unlock()
		return false
	}
	if !ec.pauseReq {
		ec.mu.Unlock()
		return true
	}
	ec.paused = true
	ec.mu.Unlock()

	select {
	case ec.ackCh <- struct{}{}:
	default:
	}

	for {
		ec.mu.Lock()
		if ec.stopReq {
			ec.mu.Unlock()
			return false
		}
		if !ec.pauseReq {
			ec.paused = false
			ec.mu.Unlock()
			return true
		}
		ec.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
}

// Stop tells the emulation goroutine to exit, including from a pause.
func (ec *EmuControl) Stop() {
	ec.mu.Lock()
	ec.stopReq = true
	ec.pauseReq = false
	ec.mu.Unlock()
}

// ShouldRun reports whether Stop has not been called.
func (ec *EmuControl) ShouldRun() bool {
	ec.mu.Lock()
	r := !ec.stopReq
	ec.mu.Unlock()
	return r
}

// IsPaused reports whether the emulation goroutine is parked.
func (ec *EmuControl) IsPaused() bool {
	ec.mu.Lock()
	p := ec.paused
	ec.mu.Unlock()
	return p
}
