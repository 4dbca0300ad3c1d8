package microdump

import "unsafe"

// SignalInfo is the part of siginfo_t the report carries.
type SignalInfo struct {
	Signo int32
	Code  int32
	Addr  uint64 // faulting address, if the signal has one
}

// CrashContext is the state captured by the exception handler at the time of
// the fatal signal. Registers is selected per architecture at build time.
type CrashContext struct {
	Tid          int32
	Siginfo      SignalInfo
	HasRegisters bool
	Regs         Registers
}

// ContextSize is the size callers must pass along with a CrashContext.
const ContextSize = unsafe.Sizeof(CrashContext{})

// ThreadID returns the id of the faulting thread.
func (c *CrashContext) ThreadID() int32 { return c.Tid }

// Signal returns the captured signal, or false if none was recorded.
func (c *CrashContext) Signal() (SignalInfo, bool) {
	return c.Siginfo, c.Siginfo.Signo != 0
}

// RegisterSnapshot returns the captured registers, or false when they were
// not captured or the platform has no register layout.
func (c *CrashContext) RegisterSnapshot() (*Registers, bool) {
	if !c.HasRegisters || NumRegisters == 0 {
		return nil, false
	}
	return &c.Regs, true
}
