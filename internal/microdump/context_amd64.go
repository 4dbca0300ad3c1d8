//go:build amd64

package microdump

const archName = "x86_64"

// NumRegisters is the number of general registers in a snapshot.
const NumRegisters = 18

// Register indexes, in Linux sigcontext order.
const (
	RegR8 = iota
	RegR9
	RegR10
	RegR11
	RegR12
	RegR13
	RegR14
	RegR15
	RegRDI
	RegRSI
	RegRBP
	RegRBX
	RegRDX
	RegRAX
	RegRCX
	RegRSP
	RegRIP
	RegEFLAGS
)

// Registers is the amd64 general register snapshot.
type Registers [NumRegisters]uint64

// PC returns the instruction pointer.
func (r *Registers) PC() uint64 { return r[RegRIP] }

// SP returns the stack pointer.
func (r *Registers) SP() uint64 { return r[RegRSP] }
