package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rv32/isa"
	"github.com/ezrec/rv32/memory"
)

func TestExecuteOp(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		funct3 uint8
		funct7 uint8
		a, b   uint32
		out    uint32
	}){
		{"add", isa.FUNCT3_ADD, isa.FUNCT7_BASE, 3, 4, 7},
		{"add_wrap", isa.FUNCT3_ADD, isa.FUNCT7_BASE, 0xffffffff, 1, 0},
		{"sub", isa.FUNCT3_ADD, isa.FUNCT7_ALT, 3, 4, 0xffffffff},
		{"sll", isa.FUNCT3_SLL, isa.FUNCT7_BASE, 1, 33, 2},
		{"slt", isa.FUNCT3_SLT, isa.FUNCT7_BASE, 0xffffffff, 1, 1},
		{"sltu", isa.FUNCT3_SLTU, isa.FUNCT7_BASE, 0xffffffff, 1, 0},
		{"xor", isa.FUNCT3_XOR, isa.FUNCT7_BASE, 0xff00, 0x0ff0, 0xf0f0},
		{"srl", isa.FUNCT3_SRL, isa.FUNCT7_BASE, 0x80000000, 4, 0x08000000},
		{"sra", isa.FUNCT3_SRL, isa.FUNCT7_ALT, 0x80000000, 4, 0xf8000000},
		{"or", isa.FUNCT3_OR, isa.FUNCT7_BASE, 0xff00, 0x0ff0, 0xfff0},
		{"and", isa.FUNCT3_AND, isa.FUNCT7_BASE, 0xff00, 0x0ff0, 0x0f00},
	}

	for _, entry := range table {
		cpu := NewDefaultCpu()
		cpu.Register[7] = entry.a
		cpu.Register[5] = entry.b

		err := cpu.Execute(isa.MakeR(isa.OPCODE_OP, 9, entry.funct3, 7, 5, entry.funct7))
		assert.NoError(err, entry.name)
		assert.Equal(entry.out, cpu.Register[9], entry.name)
	}
}

func TestExecuteOpUnimplemented(t *testing.T) {
	assert := assert.New(t)

	cpu := NewDefaultCpu()
	cpu.Register[7] = 3
	cpu.Register[5] = 4

	// mul (M extension)
	err := cpu.Execute(isa.MakeR(isa.OPCODE_OP, 9, isa.FUNCT3_ADD, 7, 5, 0b0000001))
	assert.ErrorIs(err, ErrUnimplemented)
	assert.Equal(uint32(0), cpu.Register[9])

	// funct7 ALT only selects sub and sra
	err = cpu.Execute(isa.MakeR(isa.OPCODE_OP, 9, isa.FUNCT3_XOR, 7, 5, isa.FUNCT7_ALT))
	assert.ErrorIs(err, ErrUnimplemented)
}

func TestExecuteRegisterZero(t *testing.T) {
	assert := assert.New(t)

	cpu := NewDefaultCpu()
	cpu.Register[1] = 10

	err := cpu.Execute(isa.MakeR(isa.OPCODE_OP, 0, isa.FUNCT3_ADD, 1, 1, isa.FUNCT7_BASE))
	assert.NoError(err)
	assert.Equal(uint32(0), cpu.Register[0])

	// x0 reads as zero as a source
	err = cpu.Execute(isa.MakeR(isa.OPCODE_OP, 2, isa.FUNCT3_ADD, 0, 1, isa.FUNCT7_BASE))
	assert.NoError(err)
	assert.Equal(uint32(10), cpu.Register[2])
}

func TestExecuteOpImm(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		inst isa.I
		in   uint32
		out  uint32
	}){
		{"addi", isa.MakeI(isa.OPCODE_OP_IMM, 2, isa.FUNCT3_ADD, 1, 0x25), 1, 0x26},
		{"addi_neg", isa.MakeI(isa.OPCODE_OP_IMM, 2, isa.FUNCT3_ADD, 1, -1), 1, 0},
		{"slti", isa.MakeI(isa.OPCODE_OP_IMM, 2, isa.FUNCT3_SLT, 1, -1), 0xfffffffe, 1},
		{"sltiu", isa.MakeI(isa.OPCODE_OP_IMM, 2, isa.FUNCT3_SLTU, 1, -1), 0xfffffffe, 1},
		{"xori", isa.MakeI(isa.OPCODE_OP_IMM, 2, isa.FUNCT3_XOR, 1, -1), 0x0f0f0f0f, 0xf0f0f0f0},
		{"ori", isa.MakeI(isa.OPCODE_OP_IMM, 2, isa.FUNCT3_OR, 1, 0x0f), 0xf0, 0xff},
		{"andi", isa.MakeI(isa.OPCODE_OP_IMM, 2, isa.FUNCT3_AND, 1, 0x0f), 0xff, 0x0f},
		{"slli", isa.MakeShift(isa.OPCODE_OP_IMM, 2, isa.FUNCT3_SLL, 1, 4, isa.FUNCT7_BASE), 1, 0x10},
		{"srli", isa.MakeShift(isa.OPCODE_OP_IMM, 2, isa.FUNCT3_SRL, 1, 4, isa.FUNCT7_BASE), 0x80000000, 0x08000000},
		{"srai", isa.MakeShift(isa.OPCODE_OP_IMM, 2, isa.FUNCT3_SRL, 1, 4, isa.FUNCT7_ALT), 0x80000000, 0xf8000000},
	}

	for _, entry := range table {
		cpu := NewDefaultCpu()
		cpu.Register[1] = entry.in

		err := cpu.Execute(entry.inst)
		assert.NoError(err, entry.name)
		assert.Equal(entry.out, cpu.Register[2], entry.name)
	}

	cpu := NewDefaultCpu()
	err := cpu.Execute(isa.MakeShift(isa.OPCODE_OP_IMM, 2, isa.FUNCT3_SLL, 1, 4, isa.FUNCT7_ALT))
	assert.ErrorIs(err, ErrUnimplemented)
}

func TestExecuteLoadStore(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(64, 0)
	cpu.Register[1] = 32         // base
	cpu.Register[2] = 0x8badf00d // value

	assert.NoError(cpu.Execute(isa.MakeS(isa.OPCODE_STORE, isa.FUNCT3_WORD, 1, 2, 4)))
	val, err := cpu.Load32(36)
	assert.NoError(err)
	assert.Equal(uint32(0x8badf00d), val)

	assert.NoError(cpu.Execute(isa.MakeS(isa.OPCODE_STORE, isa.FUNCT3_HALF, 1, 2, -4)))
	assert.NoError(cpu.Execute(isa.MakeS(isa.OPCODE_STORE, isa.FUNCT3_BYTE, 1, 2, -1)))
	val, err = cpu.Load32(28)
	assert.NoError(err)
	assert.Equal(uint32(0x0d00f00d), val)

	table := [](struct {
		name   string
		funct3 uint8
		imm    int32
		out    uint32
	}){
		{"lw", isa.FUNCT3_WORD, 4, 0x8badf00d},
		{"lh", isa.FUNCT3_HALF, 4, 0xfffff00d},
		{"lhu", isa.FUNCT3_HALF_U, 4, 0x0000f00d},
		{"lb", isa.FUNCT3_BYTE, 7, 0xffffff8b},
		{"lbu", isa.FUNCT3_BYTE_U, 7, 0x0000008b},
		{"lb_pos", isa.FUNCT3_BYTE, -1, 0x0000000d},
	}

	for _, entry := range table {
		err := cpu.Execute(isa.MakeI(isa.OPCODE_LOAD, 3, entry.funct3, 1, entry.imm))
		assert.NoError(err, entry.name)
		assert.Equal(entry.out, cpu.Register[3], entry.name)
	}
}

func TestExecuteLoadStoreFault(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(16, 0)
	cpu.Register[1] = 14
	cpu.Register[2] = 0xffffffff
	cpu.Register[3] = 0x1234
	before := cpu.MemoryBytes()

	err := cpu.Execute(isa.MakeS(isa.OPCODE_STORE, isa.FUNCT3_WORD, 1, 2, 0))
	assert.ErrorIs(err, ErrStore)
	assert.ErrorIs(err, memory.ErrMemoryFault)
	assert.Equal(before, cpu.MemoryBytes())

	err = cpu.Execute(isa.MakeI(isa.OPCODE_LOAD, 3, isa.FUNCT3_WORD, 1, 0))
	assert.ErrorIs(err, ErrLoad)
	assert.ErrorIs(err, memory.ErrMemoryFault)
	assert.Equal(uint32(0x1234), cpu.Register[3])

	// Half word at the last two bytes is fine.
	assert.NoError(cpu.Execute(isa.MakeS(isa.OPCODE_STORE, isa.FUNCT3_HALF, 1, 2, 0)))

	err = cpu.Execute(isa.MakeI(isa.OPCODE_LOAD, 3, 0b011, 1, 0))
	assert.ErrorIs(err, ErrUnimplemented)
}

func TestExecuteUpper(t *testing.T) {
	assert := assert.New(t)

	cpu := NewDefaultCpu()
	cpu.Pc = 0x100

	assert.NoError(cpu.Execute(isa.MakeU(isa.OPCODE_LUI, 5, 0x12345)))
	assert.Equal(uint32(0x12345000), cpu.Register[5])

	assert.NoError(cpu.Execute(isa.MakeU(isa.OPCODE_AUIPC, 6, 0x1)))
	assert.Equal(uint32(0x1100), cpu.Register[6])
}

func TestExecuteUnimplemented(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		inst isa.Instruction
	}){
		{"beq", isa.MakeB(isa.OPCODE_BRANCH, isa.FUNCT3_BEQ, 1, 2, 8)},
		{"jal", isa.MakeJ(isa.OPCODE_JAL, 1, 8)},
		{"jalr", isa.MakeI(isa.OPCODE_JALR, 1, 0, 2, 0)},
		{"fence", isa.MakeI(isa.OPCODE_MISC_MEM, 0, 0, 0, 0xff)},
		{"csrrw", isa.Syscall(0x30001073)},
	}

	for _, entry := range table {
		cpu := NewDefaultCpu()
		cpu.Register[2] = 0x40
		before := cpu.Register

		err := cpu.Execute(entry.inst)
		assert.ErrorIs(err, ErrUnimplemented, entry.name)
		assert.Equal(before, cpu.Register, entry.name)
	}
}

func TestExecuteSyscall(t *testing.T) {
	assert := assert.New(t)

	cpu := NewDefaultCpu()

	assert.ErrorIs(cpu.Execute(isa.MakeSyscall(isa.FUNCT12_ECALL)), ErrEnvironmentCall)
	assert.ErrorIs(cpu.Execute(isa.MakeSyscall(isa.FUNCT12_EBREAK)), ErrBreakpoint)
	assert.ErrorIs(cpu.Execute(isa.Unrecognized(0x7f)), isa.ErrOpcodeUnrecognized)
}
