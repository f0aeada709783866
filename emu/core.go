package emu

import (
	"bytes"
	"errors"

	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/emsaa/saa1099"
)

// Version is reported to frontends as the core version.
const Version = "0.1.0"

// OptionModel128K switches the core from 48K to 128K timing.
const OptionModel128K = "model_128k"

var errNoVGMState = errors.New("save states are not supported for VGM playback")

// Core adapts a Source to the frontend emulator contract. A loaded file is
// either a VGM/VGZ register stream or a Z80 program run at DefaultOrigin.
type Core struct {
	rom    []byte
	model  Model
	region emucore.Region

	machine *Machine // nil when playing a VGM
	source  Source
}

// IsVGM reports whether data looks like a VGM or gzip-compressed VGZ file.
func IsVGM(data []byte) bool {
	if len(data) >= 2 && data[0] == 0x1F && data[1] == 0x8B {
		return true
	}
	return bytes.HasPrefix(data, []byte("Vgm "))
}

// NewCore loads rom with the given timing model.
func NewCore(rom []byte, model Model) (*Core, error) {
	c := &Core{
		rom:    append([]byte(nil), rom...),
		region: emucore.RegionPAL,
	}
	if err := c.load(model); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Core) load(model Model) error {
	if IsVGM(c.rom) {
		f, err := ParseVGM(c.rom)
		if err != nil {
			return err
		}
		c.machine = nil
		c.source = NewVGMPlayer(f, saa1099.New(), model, 0)
	} else {
		m, err := NewMachine(c.rom, DefaultOrigin, model)
		if err != nil {
			return err
		}
		c.machine = m
		c.source = m
	}
	c.model = model
	return nil
}

// Source returns the source behind the core.
func (c *Core) Source() Source {
	return c.source
}

// RunFrame executes one frame of emulation.
func (c *Core) RunFrame() {
	c.source.RunFrame()
}

// Reset restarts the loaded program or stream.
func (c *Core) Reset() {
	c.source.Reset()
}

// GetAudioSamples returns the last frame as 48 kHz stereo int16.
func (c *Core) GetAudioSamples() []int16 {
	return c.source.GetAudioSamples()
}

// GetFramebuffer returns the scope image.
func (c *Core) GetFramebuffer() []byte {
	return c.source.GetFramebuffer()
}

// GetFramebufferStride returns bytes per scope row.
func (c *Core) GetFramebufferStride() int {
	return c.source.GetFramebufferStride()
}

// GetActiveHeight returns the scope height.
func (c *Core) GetActiveHeight() int {
	return ScreenHeight
}

// SetInput is a no-op; the core has no controls.
func (c *Core) SetInput(player int, buttons uint32) {}

// GetRegion returns the region last set. All modelled machines are 50 Hz
// so it defaults to PAL.
func (c *Core) GetRegion() emucore.Region {
	return c.region
}

// SetRegion records the region. Timing follows the model option instead.
func (c *Core) SetRegion(region emucore.Region) {
	c.region = region
}

// GetTiming returns FPS and scanline count for the current model.
func (c *Core) GetTiming() emucore.Timing {
	t := c.source.GetTiming()
	return emucore.Timing{
		FPS:       t.FPS,
		Scanlines: t.Scanlines(),
	}
}

// GetModel returns the timing model in use.
func (c *Core) GetModel() Model {
	return c.model
}

// SetOption applies a core option change identified by key.
func (c *Core) SetOption(key string, value string) {
	switch key {
	case OptionModel128K:
		model := Model48K
		if value == "true" {
			model = Model128K
		}
		if model != c.model {
			// The file already loaded once, so reloading cannot fail.
			_ = c.load(model)
		}
	}
}

// Close releases any resources held by the core.
func (c *Core) Close() {}

// Serialize creates a save state of the Z80 machine.
func (c *Core) Serialize() ([]byte, error) {
	if c.machine == nil {
		return nil, errNoVGMState
	}
	return c.machine.Serialize()
}

// Deserialize restores a save state created by Serialize.
func (c *Core) Deserialize(data []byte) error {
	if c.machine == nil {
		return errNoVGMState
	}
	return c.machine.Deserialize(data)
}

// VerifyState checks a save state without loading it.
func (c *Core) VerifyState(data []byte) error {
	if c.machine == nil {
		return errNoVGMState
	}
	return c.machine.VerifyState(data)
}

// HasSRAM returns false; nothing is battery backed.
func (c *Core) HasSRAM() bool {
	return false
}

// GetSRAM returns nil.
func (c *Core) GetSRAM() []byte {
	return nil
}

// SetSRAM ignores data.
func (c *Core) SetSRAM(data []byte) {}

// GetSRAMSize returns 0.
func (c *Core) GetSRAMSize() int {
	return 0
}

// ReadMemory reads from the flat Z80 address space into buf and returns
// the number of bytes read.
func (c *Core) ReadMemory(addr uint32, buf []byte) uint32 {
	if c.machine == nil {
		return 0
	}
	var count uint32
	for i := range buf {
		cur := addr + uint32(i)
		if cur >= ramSize {
			return count
		}
		buf[i] = c.machine.ReadRAM(uint16(cur))
		count++
	}
	return count
}

// MemoryMap lists the available memory regions.
func (c *Core) MemoryMap() []emucore.MemoryRegion {
	if c.machine == nil {
		return nil
	}
	return []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Size: ramSize},
	}
}

// ReadRegion returns a copy of the specified memory region.
func (c *Core) ReadRegion(regionType int) []byte {
	if c.machine == nil || regionType != emucore.MemorySystemRAM {
		return nil
	}
	return c.machine.GetRAM()
}

// WriteRegion writes data to the specified memory region.
func (c *Core) WriteRegion(regionType int, data []byte) {
	if c.machine == nil || regionType != emucore.MemorySystemRAM {
		return
	}
	c.machine.SetRAM(data)
}
