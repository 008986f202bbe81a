package isa

// Classify returns the format view of a raw instruction word. The result is
// always one of R, I, S, B, U, J, Syscall or Unrecognized.
func Classify(word uint32) Instruction {
	switch FormatOf(opcode(word)) {
	case FORMAT_R:
		return R(word)
	case FORMAT_I:
		return I(word)
	case FORMAT_S:
		return S(word)
	case FORMAT_B:
		return B(word)
	case FORMAT_U:
		return U(word)
	case FORMAT_J:
		return J(word)
	case FORMAT_SYSTEM:
		return Syscall(word)
	}

	return Unrecognized(word)
}

// Decode classifies a raw instruction word, and reports an ErrUnrecognized
// for words outside the supported opcode table. The Unrecognized value is
// returned together with the error.
func Decode(word uint32) (inst Instruction, err error) {
	inst = Classify(word)
	if _, ok := inst.(Unrecognized); ok {
		err = ErrUnrecognized(word)
	}

	return
}
