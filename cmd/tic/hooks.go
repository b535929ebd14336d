package main

import (
	"log"

	"github.com/go6502/conform/hooks"
)

// CLIHooks adapts the conformance core's host-adaptation interface to an
// interactive terminal session: progress and mismatches are logged as they
// happen, and every zero-page address is considered safe since the harness
// owns the whole address space of its own simulator.
type CLIHooks struct {
	Phase string
}

func (h *CLIHooks) Progress(phase string, done, total int) {
	if total == 0 {
		return
	}
	// Only log at coarse intervals; a full ALU cube is 2^18 points and
	// logging every one of them would drown everything else out.
	if done%(1<<16) != 0 && done != total {
		return
	}
	log.Printf("%s: %d/%d", phase, done, total)
}

func (h *CLIHooks) MismatchFound(kind, detail string) {
	log.Printf("%s: mismatch (%s): %s", h.Phase, kind, detail)
}

func (h *CLIHooks) ZPSafeForRead(addr uint8) bool  { return true }
func (h *CLIHooks) ZPSafeForWrite(addr uint8) bool { return true }
func (h *CLIHooks) IRQPlatformOverhead() int       { return 0 }

var _ hooks.Hooks = (*CLIHooks)(nil)
