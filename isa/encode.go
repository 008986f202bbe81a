package isa

// makeBase packs the fields shared by every format.
func makeBase(opcode, rd, funct3, rs1, rs2 uint8) uint32 {
	return uint32(opcode&OPCODE_MASK) |
		(uint32(rd&0x1f) << 7) |
		(uint32(funct3&0x7) << 12) |
		(uint32(rs1&0x1f) << 15) |
		(uint32(rs2&0x1f) << 20)
}

// MakeR creates a register-register instruction.
func MakeR(opcode, rd, funct3, rs1, rs2, funct7 uint8) R {
	return R(makeBase(opcode, rd, funct3, rs1, rs2) | (uint32(funct7&0x7f) << 25))
}

// MakeI creates a register-immediate instruction. Only the low 12 bits of
// 'imm' are encoded.
func MakeI(opcode, rd, funct3, rs1 uint8, imm int32) I {
	return I(makeBase(opcode, rd, funct3, rs1, 0) | ((uint32(imm) & 0xfff) << 20))
}

// MakeShift creates a shift-immediate instruction (slli, srli, srai).
func MakeShift(opcode, rd, funct3, rs1, shamt, funct7 uint8) I {
	return I(makeBase(opcode, rd, funct3, rs1, shamt) | (uint32(funct7&0x7f) << 25))
}

// MakeS creates a store instruction.
func MakeS(opcode, funct3, rs1, rs2 uint8, imm int32) S {
	value := uint32(imm) & 0xfff
	return S(makeBase(opcode, 0, funct3, rs1, rs2) |
		((value & 0x1f) << 7) |
		((value >> 5) << 25))
}

// MakeB creates a branch instruction. The lowest bit of 'imm' is not encoded.
func MakeB(opcode, funct3, rs1, rs2 uint8, imm int32) B {
	value := uint32(imm) & 0x1ffe
	return B(makeBase(opcode, 0, funct3, rs1, rs2) |
		(((value >> 12) & 0x1) << 31) |
		(((value >> 5) & 0x3f) << 25) |
		(((value >> 1) & 0xf) << 8) |
		(((value >> 11) & 0x1) << 7))
}

// MakeU creates an upper immediate instruction from the 20 bit 'imm20'.
func MakeU(opcode, rd uint8, imm20 uint32) U {
	return U(makeBase(opcode, rd, 0, 0, 0) | ((imm20 & 0xfffff) << 12))
}

// MakeJ creates a jump instruction. The lowest bit of 'imm' is not encoded.
func MakeJ(opcode, rd uint8, imm int32) J {
	value := uint32(imm) & 0x1ffffe
	return J(makeBase(opcode, rd, 0, 0, 0) |
		(((value >> 20) & 0x1) << 31) |
		(((value >> 1) & 0x3ff) << 21) |
		(((value >> 11) & 0x1) << 20) |
		(((value >> 12) & 0xff) << 12))
}

// MakeSyscall creates a SYSTEM instruction with the given funct12.
func MakeSyscall(funct12 uint16) Syscall {
	return Syscall(uint32(OPCODE_SYSTEM) | (uint32(funct12&0xfff) << 20))
}
