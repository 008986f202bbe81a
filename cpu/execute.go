package cpu

import (
	"errors"

	"github.com/ezrec/rv32/isa"
)

// Execute executes a single decoded instruction at the current PC.
// Execute does not advance the PC.
func (cpu *Cpu) Execute(inst isa.Instruction) (err error) {
	switch inst := inst.(type) {
	case isa.R:
		err = cpu.executeR(inst)
	case isa.I:
		err = cpu.executeI(inst)
	case isa.S:
		err = cpu.executeS(inst)
	case isa.U:
		err = cpu.executeU(inst)
	case isa.B, isa.J:
		err = ErrUnimplemented
	case isa.Syscall:
		err = cpu.executeSyscall(inst)
	default:
		err = isa.ErrUnrecognized(inst.Word())
	}

	return
}

// executeR executes the register-register (OP) group.
func (cpu *Cpu) executeR(inst isa.R) (err error) {
	if inst.Opcode() != isa.OPCODE_OP {
		return ErrUnimplemented
	}

	var alt bool
	switch inst.Funct7() {
	case isa.FUNCT7_BASE:
		alt = false
	case isa.FUNCT7_ALT:
		if inst.Funct3() != isa.FUNCT3_ADD && inst.Funct3() != isa.FUNCT3_SRL {
			return ErrUnimplemented
		}
		alt = true
	default:
		return ErrUnimplemented
	}

	output := doAlu(inst.Funct3(), alt, cpu.reg(inst.Rs1()), cpu.reg(inst.Rs2()))
	cpu.setReg(inst.Rd(), output)

	return
}

// executeI executes the OP-IMM and LOAD groups.
func (cpu *Cpu) executeI(inst isa.I) (err error) {
	switch inst.Opcode() {
	case isa.OPCODE_OP_IMM:
		input := cpu.reg(inst.Rs1())
		value := uint32(inst.Imm())
		alt := false
		switch inst.Funct3() {
		case isa.FUNCT3_SLL:
			if inst.Funct7() != isa.FUNCT7_BASE {
				return ErrUnimplemented
			}
			value = uint32(inst.Shamt())
		case isa.FUNCT3_SRL:
			switch inst.Funct7() {
			case isa.FUNCT7_BASE:
			case isa.FUNCT7_ALT:
				alt = true
			default:
				return ErrUnimplemented
			}
			value = uint32(inst.Shamt())
		}
		cpu.setReg(inst.Rd(), doAlu(inst.Funct3(), alt, input, value))
	case isa.OPCODE_LOAD:
		addr := cpu.reg(inst.Rs1()) + uint32(inst.Imm())
		var value uint32
		value, err = cpu.load(inst.Funct3(), addr)
		if err != nil {
			return
		}
		cpu.setReg(inst.Rd(), value)
	default:
		// jalr, fence
		err = ErrUnimplemented
	}

	return
}

// load reads memory for the LOAD group.
func (cpu *Cpu) load(funct3 uint8, addr uint32) (value uint32, err error) {
	mem := cpu.memory

	switch funct3 {
	case isa.FUNCT3_BYTE:
		var b byte
		b, err = mem.Read(addr)
		value = uint32(int32(int8(b)))
	case isa.FUNCT3_HALF:
		var h uint16
		h, err = mem.Read16(addr)
		value = uint32(int32(int16(h)))
	case isa.FUNCT3_WORD:
		value, err = mem.Read32(addr)
	case isa.FUNCT3_BYTE_U:
		var b byte
		b, err = mem.Read(addr)
		value = uint32(b)
	case isa.FUNCT3_HALF_U:
		var h uint16
		h, err = mem.Read16(addr)
		value = uint32(h)
	default:
		return 0, ErrUnimplemented
	}

	if err != nil {
		err = errors.Join(ErrLoad, err)
	}

	return
}

// executeS executes the STORE group.
func (cpu *Cpu) executeS(inst isa.S) (err error) {
	mem := cpu.memory

	addr := cpu.reg(inst.Rs1()) + uint32(inst.Imm())
	value := cpu.reg(inst.Rs2())

	switch inst.Funct3() {
	case isa.FUNCT3_BYTE:
		err = mem.Write(addr, byte(value))
	case isa.FUNCT3_HALF:
		err = mem.Write16(addr, uint16(value))
	case isa.FUNCT3_WORD:
		err = mem.Write32(addr, value)
	default:
		return ErrUnimplemented
	}

	if err != nil {
		err = errors.Join(ErrStore, err)
	}

	return
}

// executeU executes lui and auipc.
func (cpu *Cpu) executeU(inst isa.U) (err error) {
	switch inst.Opcode() {
	case isa.OPCODE_LUI:
		cpu.setReg(inst.Rd(), inst.Imm())
	case isa.OPCODE_AUIPC:
		cpu.setReg(inst.Rd(), cpu.Pc+inst.Imm())
	default:
		err = ErrUnimplemented
	}

	return
}

// executeSyscall executes ecall and ebreak.
func (cpu *Cpu) executeSyscall(inst isa.Syscall) (err error) {
	switch inst {
	case isa.MakeSyscall(isa.FUNCT12_ECALL):
		err = ErrEnvironmentCall
	case isa.MakeSyscall(isa.FUNCT12_EBREAK):
		err = ErrBreakpoint
	default:
		// csr access
		err = ErrUnimplemented
	}

	return
}

// doAlu performs the requested ALU action, and returns the output value.
// 'alt' selects sub over add, and sra over srl.
func doAlu(funct3 uint8, alt bool, input uint32, value uint32) (output uint32) {
	switch funct3 {
	case isa.FUNCT3_ADD:
		if alt {
			output = input - value
		} else {
			output = input + value
		}
	case isa.FUNCT3_SLL:
		output = input << (value & 0x1f)
	case isa.FUNCT3_SLT:
		if int32(input) < int32(value) {
			output = 1
		}
	case isa.FUNCT3_SLTU:
		if input < value {
			output = 1
		}
	case isa.FUNCT3_XOR:
		output = input ^ value
	case isa.FUNCT3_SRL:
		if alt {
			output = uint32(int32(input) >> (value & 0x1f))
		} else {
			output = input >> (value & 0x1f)
		}
	case isa.FUNCT3_OR:
		output = input | value
	case isa.FUNCT3_AND:
		output = input & value
	}

	return
}
