// Package adapter exposes the emu core to eblitui frontends.
package adapter

import (
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/emsaa/emu"
)

// Compile-time interface check.
var _ emucore.CoreFactory = (*Factory)(nil)

// Factory implements emucore.CoreFactory for the SAA1099 player.
type Factory struct{}

// SystemInfo returns system metadata for UI configuration. The core takes
// no input so no buttons are declared.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            "emsaa",
		ConsoleName:     "Philips SAA1099",
		Extensions:      []string{".bin", ".vgm", ".vgz"},
		ScreenWidth:     emu.ScreenWidth,
		MaxScreenHeight: emu.ScreenHeight,
		AspectRatio:     float64(emu.ScreenWidth) / float64(emu.ScreenHeight),
		SampleRate:      48000,
		Players:         1,
		CoreOptions: []emucore.CoreOption{
			{
				Key:         emu.OptionModel128K,
				Label:       "128K Timing",
				Description: "Clock Z80 programs with 128K frame timing instead of 48K",
				Type:        emucore.CoreOptionBool,
				Default:     "false",
			},
		},
		DataDirName:   "emsaa",
		CoreName:      emu.Name,
		CoreVersion:   emu.Version,
		SerializeSize: emu.SerializeSize(),
	}
}

// CreateEmulator loads rom, a VGM/VGZ stream or a raw Z80 program.
func (f *Factory) CreateEmulator(rom []byte, region emucore.Region) (emucore.Emulator, error) {
	c, err := emu.NewCore(rom, emu.Model48K)
	if err != nil {
		return nil, err
	}
	c.SetRegion(region)
	return c, nil
}

// DetectRegion always reports PAL. The bool return is false since no ROM
// database lookup is involved.
func (f *Factory) DetectRegion(rom []byte) (emucore.Region, bool) {
	return emucore.RegionPAL, false
}
