package isa

import (
	"fmt"
)

// Instruction is a classified instruction word.
type Instruction interface {
	Format() Format // Format tag of the word.
	Word() uint32   // Raw instruction word.
	Opcode() uint8  // Major opcode, bits[6:0].
}

// Register-register instruction.
type R uint32

// Register-immediate, load and jalr instruction.
type I uint32

// Store instruction.
type S uint32

// Conditional branch instruction.
type B uint32

// Upper immediate instruction.
type U uint32

// Jump instruction.
type J uint32

// Syscall is a SYSTEM instruction (ecall, ebreak, csr*).
type Syscall uint32

// Unrecognized is a word whose opcode is not in the supported table.
type Unrecognized uint32

var (
	_ Instruction = R(0)
	_ Instruction = I(0)
	_ Instruction = S(0)
	_ Instruction = B(0)
	_ Instruction = U(0)
	_ Instruction = J(0)
	_ Instruction = Syscall(0)
	_ Instruction = Unrecognized(0)
)

// signExtend sign extends the low 'width' bits of value.
func signExtend(value uint32, width uint) int32 {
	shift := 32 - width
	return int32(value<<shift) >> shift
}

func opcode(word uint32) uint8 { return uint8(word & OPCODE_MASK) }
func rd(word uint32) uint8     { return uint8((word >> 7) & 0x1f) }
func funct3(word uint32) uint8 { return uint8((word >> 12) & 0x7) }
func rs1(word uint32) uint8    { return uint8((word >> 15) & 0x1f) }
func rs2(word uint32) uint8    { return uint8((word >> 20) & 0x1f) }
func funct7(word uint32) uint8 { return uint8(word >> 25) }

func (r R) Format() Format { return FORMAT_R }
func (r R) Word() uint32   { return uint32(r) }
func (r R) Opcode() uint8  { return opcode(uint32(r)) }
func (r R) Rd() uint8      { return rd(uint32(r)) }
func (r R) Funct3() uint8  { return funct3(uint32(r)) }
func (r R) Rs1() uint8     { return rs1(uint32(r)) }
func (r R) Rs2() uint8     { return rs2(uint32(r)) }
func (r R) Funct7() uint8  { return funct7(uint32(r)) }

func (r R) String() string {
	return fmt.Sprintf("R[op:%07b rd:%d f3:%d rs1:%d rs2:%d f7:%07b]",
		r.Opcode(), r.Rd(), r.Funct3(), r.Rs1(), r.Rs2(), r.Funct7())
}

func (i I) Format() Format { return FORMAT_I }
func (i I) Word() uint32   { return uint32(i) }
func (i I) Opcode() uint8  { return opcode(uint32(i)) }
func (i I) Rd() uint8      { return rd(uint32(i)) }
func (i I) Funct3() uint8  { return funct3(uint32(i)) }
func (i I) Rs1() uint8     { return rs1(uint32(i)) }

// Imm returns bits[31:20], sign extended.
func (i I) Imm() int32 {
	return signExtend(uint32(i)>>20, 12)
}

// Shamt returns the shift amount of slli, srli and srai.
func (i I) Shamt() uint8 {
	return rs2(uint32(i))
}

// Funct7 returns the upper immediate bits that select srli or srai.
func (i I) Funct7() uint8 {
	return funct7(uint32(i))
}

func (i I) String() string {
	return fmt.Sprintf("I[op:%07b rd:%d f3:%d rs1:%d imm:%d]",
		i.Opcode(), i.Rd(), i.Funct3(), i.Rs1(), i.Imm())
}

func (s S) Format() Format { return FORMAT_S }
func (s S) Word() uint32   { return uint32(s) }
func (s S) Opcode() uint8  { return opcode(uint32(s)) }
func (s S) Funct3() uint8  { return funct3(uint32(s)) }
func (s S) Rs1() uint8     { return rs1(uint32(s)) }
func (s S) Rs2() uint8     { return rs2(uint32(s)) }

// Imm returns imm[11:5] from bits[31:25] and imm[4:0] from bits[11:7],
// sign extended.
func (s S) Imm() int32 {
	word := uint32(s)
	value := ((word >> 25) << 5) | ((word >> 7) & 0x1f)
	return signExtend(value, 12)
}

func (s S) String() string {
	return fmt.Sprintf("S[op:%07b f3:%d rs1:%d rs2:%d imm:%d]",
		s.Opcode(), s.Funct3(), s.Rs1(), s.Rs2(), s.Imm())
}

func (b B) Format() Format { return FORMAT_B }
func (b B) Word() uint32   { return uint32(b) }
func (b B) Opcode() uint8  { return opcode(uint32(b)) }
func (b B) Funct3() uint8  { return funct3(uint32(b)) }
func (b B) Rs1() uint8     { return rs1(uint32(b)) }
func (b B) Rs2() uint8     { return rs2(uint32(b)) }

// Imm returns the branch byte offset. The 13 bit value is always even,
// and is sign extended.
//
//	imm[12]   = bit 31
//	imm[11]   = bit 7
//	imm[10:5] = bits[30:25]
//	imm[4:1]  = bits[11:8]
func (b B) Imm() int32 {
	word := uint32(b)
	value := ((word >> 31) & 0x1) << 12
	value |= ((word >> 7) & 0x1) << 11
	value |= ((word >> 25) & 0x3f) << 5
	value |= ((word >> 8) & 0xf) << 1
	return signExtend(value, 13)
}

// PackedImm returns the branch immediate fields OR-ed together without
// moving imm[10:5] and imm[4:1] to their bit positions. This is the offset
// representation of the original hand-written test vectors.
func (b B) PackedImm() int32 {
	word := uint32(b)
	lo := (word >> 7) & 0x1f
	hi := word >> 25
	value := (lo >> 1) | ((lo & 1) << 11) | (hi & 0x1f) | ((hi >> 6) << 12)
	return signExtend(value, 13)
}

func (b B) String() string {
	return fmt.Sprintf("B[op:%07b f3:%d rs1:%d rs2:%d imm:%d]",
		b.Opcode(), b.Funct3(), b.Rs1(), b.Rs2(), b.Imm())
}

func (u U) Format() Format { return FORMAT_U }
func (u U) Word() uint32   { return uint32(u) }
func (u U) Opcode() uint8  { return opcode(uint32(u)) }
func (u U) Rd() uint8      { return rd(uint32(u)) }

// Imm returns bits[31:12] in place, with the low 12 bits zero.
func (u U) Imm() uint32 {
	return uint32(u) & 0xfffff000
}

// Imm20 returns the raw 20 bit immediate field.
func (u U) Imm20() uint32 {
	return uint32(u) >> 12
}

func (u U) String() string {
	return fmt.Sprintf("U[op:%07b rd:%d imm:0x%05x]", u.Opcode(), u.Rd(), u.Imm20())
}

func (j J) Format() Format { return FORMAT_J }
func (j J) Word() uint32   { return uint32(j) }
func (j J) Opcode() uint8  { return opcode(uint32(j)) }
func (j J) Rd() uint8      { return rd(uint32(j)) }

// Imm returns the jump byte offset. The 21 bit value is always even,
// and is sign extended.
//
//	imm[20]    = bit 31
//	imm[19:12] = bits[19:12]
//	imm[11]    = bit 20
//	imm[10:1]  = bits[30:21]
func (j J) Imm() int32 {
	word := uint32(j)
	value := ((word >> 31) & 0x1) << 20
	value |= ((word >> 12) & 0xff) << 12
	value |= ((word >> 20) & 0x1) << 11
	value |= ((word >> 21) & 0x3ff) << 1
	return signExtend(value, 21)
}

func (j J) String() string {
	return fmt.Sprintf("J[op:%07b rd:%d imm:%d]", j.Opcode(), j.Rd(), j.Imm())
}

func (sc Syscall) Format() Format { return FORMAT_SYSTEM }
func (sc Syscall) Word() uint32   { return uint32(sc) }
func (sc Syscall) Opcode() uint8  { return opcode(uint32(sc)) }

// Funct12 returns bits[31:20]; 0 for ecall, 1 for ebreak.
func (sc Syscall) Funct12() uint16 {
	return uint16(uint32(sc) >> 20)
}

func (sc Syscall) String() string {
	return fmt.Sprintf("SYSTEM[0x%08x]", uint32(sc))
}

func (un Unrecognized) Format() Format { return FORMAT_UNKNOWN }
func (un Unrecognized) Word() uint32   { return uint32(un) }
func (un Unrecognized) Opcode() uint8  { return opcode(uint32(un)) }

func (un Unrecognized) String() string {
	return fmt.Sprintf("UNKNOWN[0x%08x]", uint32(un))
}
