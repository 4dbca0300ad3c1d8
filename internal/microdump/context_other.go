//go:build !amd64 && !arm64

package microdump

import "runtime"

const archName = runtime.GOARCH

// NumRegisters is zero: no register layout is known for this architecture
// and the C line is never emitted.
const NumRegisters = 0

// Registers is empty on architectures without a known layout.
type Registers [NumRegisters]uint64

// PC always returns 0.
func (r *Registers) PC() uint64 { return 0 }

// SP always returns 0.
func (r *Registers) SP() uint64 { return 0 }
