//go:build arm64

package microdump

const archName = "arm64"

// NumRegisters is the number of general registers in a snapshot:
// X0..X30, SP, PC and PSTATE.
const NumRegisters = 34

const (
	RegLR     = 30
	RegSP     = 31
	RegPC     = 32
	RegPSTATE = 33
)

// Registers is the arm64 general register snapshot.
type Registers [NumRegisters]uint64

// PC returns the program counter.
func (r *Registers) PC() uint64 { return r[RegPC] }

// SP returns the stack pointer.
func (r *Registers) SP() uint64 { return r[RegSP] }
