package cpu

import (
	"errors"

	"github.com/ezrec/rv32/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrUninitialized   = errors.New(f("cpu not initialized"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrFetch           = errors.New(f("fetch"))
	ErrLoad            = errors.New(f("load"))
	ErrStore           = errors.New(f("store"))

	// Execute errors
	ErrUnimplemented   = errors.New(f("instruction unimplemented"))
	ErrEnvironmentCall = errors.New(f("environment call"))
	ErrBreakpoint      = errors.New(f("breakpoint"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelRange         = errors.New(f("label out of range"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrImmediateRange     = errors.New(f("immediate out of range"))
	ErrImmediateAlign     = errors.New(f("immediate misaligned"))
)

// ErrRegister is an out of range register index.
type ErrRegister uint

func (er ErrRegister) Error() string {
	return f("register x%d invalid", uint(er))
}

func (er ErrRegister) Is(err error) bool {
	return err == ErrRegisterInvalid
}

// ErrInstruction locates an execution failure.
type ErrInstruction struct {
	Pc   uint32 // Address of the failing instruction.
	Word uint32 // Fetched instruction word, if any.
	Err  error
}

func (err *ErrInstruction) Error() string {
	return f("pc 0x%08x word 0x%08x: %v", err.Pc, err.Word, err.Err)
}

func (err *ErrInstruction) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("'%v' is not a register", string(err))
}

type ErrParseAddress string

func (err ErrParseAddress) Error() string {
	return f("'%v' is not an offset(register) address", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
