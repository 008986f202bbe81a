package isa

// Major opcodes of the RV32 base encoding (bits[6:0]).
const (
	OPCODE_LOAD     = uint8(0b0000011) // lb, lh, lw, lbu, lhu
	OPCODE_MISC_MEM = uint8(0b0001111) // fence
	OPCODE_OP_IMM   = uint8(0b0010011) // addi, slti, ...
	OPCODE_AUIPC    = uint8(0b0010111) // auipc
	OPCODE_STORE    = uint8(0b0100011) // sb, sh, sw
	OPCODE_OP       = uint8(0b0110011) // add, sub, ...
	OPCODE_LUI      = uint8(0b0110111) // lui
	OPCODE_BRANCH   = uint8(0b1100011) // beq, bne, ...
	OPCODE_JALR     = uint8(0b1100111) // jalr
	OPCODE_JAL      = uint8(0b1101111) // jal
	OPCODE_SYSTEM   = uint8(0b1110011) // ecall, ebreak

	OPCODE_MASK = 0x7f // Mask of the opcode field.
)

// funct3 values of the OP and OP-IMM groups.
const (
	FUNCT3_ADD  = uint8(0b000) // add, sub, addi
	FUNCT3_SLL  = uint8(0b001)
	FUNCT3_SLT  = uint8(0b010)
	FUNCT3_SLTU = uint8(0b011)
	FUNCT3_XOR  = uint8(0b100)
	FUNCT3_SRL  = uint8(0b101) // srl, sra
	FUNCT3_OR   = uint8(0b110)
	FUNCT3_AND  = uint8(0b111)
)

// funct3 values of the LOAD and STORE groups.
const (
	FUNCT3_BYTE   = uint8(0b000)
	FUNCT3_HALF   = uint8(0b001)
	FUNCT3_WORD   = uint8(0b010)
	FUNCT3_BYTE_U = uint8(0b100)
	FUNCT3_HALF_U = uint8(0b101)
)

// funct3 values of the BRANCH group.
const (
	FUNCT3_BEQ  = uint8(0b000)
	FUNCT3_BNE  = uint8(0b001)
	FUNCT3_BLT  = uint8(0b100)
	FUNCT3_BGE  = uint8(0b101)
	FUNCT3_BLTU = uint8(0b110)
	FUNCT3_BGEU = uint8(0b111)
)

// funct7 values of the OP group.
const (
	FUNCT7_BASE = uint8(0b0000000)
	FUNCT7_ALT  = uint8(0b0100000) // sub, sra, srai
)

// funct12 values of the SYSTEM group.
const (
	FUNCT12_ECALL  = uint16(0)
	FUNCT12_EBREAK = uint16(1)
)

// Format is the tag of a decoded instruction.
type Format int

//go:generate go tool stringer -linecomment -type=Format
const (
	FORMAT_UNKNOWN = Format(0) // UNKNOWN
	FORMAT_R       = Format(1) // R
	FORMAT_I       = Format(2) // I
	FORMAT_S       = Format(3) // S
	FORMAT_B       = Format(4) // B
	FORMAT_U       = Format(5) // U
	FORMAT_J       = Format(6) // J
	FORMAT_SYSTEM  = Format(7) // SYSTEM
)

// FormatOf returns the format of a major opcode. Only the low 7 bits of
// 'opcode' are considered.
func FormatOf(opcode uint8) Format {
	switch opcode & OPCODE_MASK {
	case OPCODE_OP:
		return FORMAT_R
	case OPCODE_OP_IMM, OPCODE_LOAD, OPCODE_JALR, OPCODE_MISC_MEM:
		return FORMAT_I
	case OPCODE_STORE:
		return FORMAT_S
	case OPCODE_BRANCH:
		return FORMAT_B
	case OPCODE_LUI, OPCODE_AUIPC:
		return FORMAT_U
	case OPCODE_JAL:
		return FORMAT_J
	case OPCODE_SYSTEM:
		return FORMAT_SYSTEM
	}

	return FORMAT_UNKNOWN
}
