// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build tinygo && cortexm

package platform

import (
	"device/arm"
	"runtime/volatile"
	"unsafe"
)

// Debug and trace registers, ARMv7-M architecture reference manual C1.
const (
	regDEMCR     = 0xE000EDFC
	regDWTCtrl   = 0xE0001000
	regDWTCyccnt = 0xE0001004
	demcrTRCENA  = 1 << 24
	dwtCYCCNTENA = 1 << 0
	maxNestDepth = 255
)

var (
	demcr     = (*volatile.Register32)(unsafe.Pointer(uintptr(regDEMCR)))
	dwtCtrl   = (*volatile.Register32)(unsafe.Pointer(uintptr(regDWTCtrl)))
	dwtCyccnt = (*volatile.Register32)(unsafe.Pointer(uintptr(regDWTCyccnt)))
)

// CortexM4 is the bare-metal platform. Ticks are CPU cycles from the DWT
// cycle counter, critical sections mask interrupts via PRIMASK, and idle
// sleep is WFE, which also returns on any interrupt or SEV.
type CortexM4 struct {
	saved uintptr
	depth uint8
}

var _ interface {
	Platform
	Signaler
} = (*CortexM4)(nil)

// NewCortexM4 enables and resets the cycle counter.
func NewCortexM4() *CortexM4 {
	demcr.SetBits(demcrTRCENA)
	dwtCyccnt.Set(0)
	dwtCtrl.SetBits(dwtCYCCNTENA)
	return &CortexM4{}
}

// Now reads CYCCNT. It is a single 32-bit load and safe in any context.
func (x *CortexM4) Now() Tick {
	return Tick(dwtCyccnt.Get())
}

// EnterCritical masks interrupts, saving PRIMASK on the outermost call.
func (x *CortexM4) EnterCritical() {
	mask := arm.DisableInterrupts()
	if x.depth == 0 {
		x.saved = mask
	}
	if x.depth == maxNestDepth {
		panic("platform: critical section nesting overflow")
	}
	x.depth++
}

// ExitCritical restores PRIMASK once the outermost section exits.
func (x *CortexM4) ExitCritical() {
	if x.depth == 0 {
		panic("platform: exit critical without enter")
	}
	if x.depth--; x.depth == 0 {
		arm.EnableInterrupts(x.saved)
	}
}

// SleepUntilEvent executes WFE.
func (x *CortexM4) SleepUntilEvent() {
	arm.Asm("wfe")
}

// Signal executes SEV, so the next (or a pending) WFE returns.
func (x *CortexM4) Signal() {
	arm.Asm("sev")
}
