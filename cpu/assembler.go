// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/rv32/isa"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":           "0",
	"REGISTER_COUNT":   fmt.Sprintf("%d", REGISTER_COUNT),
	"INSTRUCTION_SIZE": fmt.Sprintf("%d", INSTRUCTION_SIZE),
}

// Assembler is a single pass macro assembler for RV32I.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Origin  uint32   // Address of the first assembled word.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	expansion int                 // Count of macro expansions, for unique '@' labels.
	Label     map[string]uint32   // Map of jump labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
}

// Predefine defines a new equate or redefines an existing equate, which
// is applied on every Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// registerMap maps numeric and ABI register names to indexes.
var registerMap = map[string]uint8{
	"fp": 8,
}

func init() {
	for n, name := range RegisterName {
		registerMap[name] = uint8(n)
		registerMap[fmt.Sprintf("x%d", n)] = uint8(n)
	}
}

// register returns the index of a register name.
func (asm *Assembler) register(word string) (reg uint8, err error) {
	reg, ok := registerMap[word]
	if !ok {
		err = ErrParseRegister(word)
	}

	return
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	invert := false
	if len(word) > 1 && word[0] == '~' {
		invert = true
		word = word[1:]
	}

	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if invert {
		value = ^value
	}

	return
}

// immediate range checks a signed immediate of 'bits' width.
func immediate(value int64, bits uint) (imm int32, err error) {
	limit := int64(1) << (bits - 1)
	if value < -limit || value >= limit {
		err = ErrImmediateRange
		return
	}

	imm = int32(value)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value64 int64
		value64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(value64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\((?:[^()]|\([^()]*\))*\)`)
	reAddress    = regexp.MustCompile(`^([^()]*)\(([^()]+)\)$`)
	reLabel      = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)
)

// substitute replaces a word, or both halves of an offset(register) word,
// with their equates.
func (asm *Assembler) substitute(word string) string {
	equate, ok := asm.Equate[word]
	if ok {
		return equate
	}

	match := reAddress.FindStringSubmatch(word)
	if match == nil {
		return word
	}

	offset, base := match[1], match[2]
	if equate, ok := asm.Equate[offset]; ok {
		offset = equate
	}
	if equate, ok := asm.Equate[base]; ok {
		base = equate
	}

	return offset + "(" + base + ")"
}

// parseLine parses a single line into words.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(strings.ReplaceAll(line, ",", " "))

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		words[n] = asm.substitute(word)
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]uint32, 16)
		}
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansion += 1
		unique := fmt.Sprintf("%v_%v_", name, asm.expansion)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", unique)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddr gets the address of the next assembled word.
func (asm *Assembler) currentAddr() uint32 {
	if len(asm.Opcode) == 0 {
		return asm.Origin
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Addr + uint32(len(last.Codes))*INSTRUCTION_SIZE
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.expansion = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text, _, _ = strings.Cut(text, ";")
		text, _, _ = strings.Cut(text, "#")
		line = strings.TrimSpace(text)
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if err = scanner.Err(); err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		lineno = op.LineNo
		line = strings.Join(op.Words, " ")

		err = asm.link(op)
		if err != nil {
			return
		}
	}

	prog = &Program{
		Origin:  asm.Origin,
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// link patches the branch or jump offset to op.LinkLabel into the last code of op.
func (asm *Assembler) link(op *Opcode) (err error) {
	target, ok := asm.Label[op.LinkLabel]
	if !ok {
		err = ErrLabelMissing(op.LinkLabel)
		return
	}

	index := len(op.Codes) - 1
	linked := &op.Codes[index]
	here := op.Addr + uint32(index)*INSTRUCTION_SIZE
	offset := int64(target) - int64(here)

	switch isa.Classify(*linked).(type) {
	case isa.B:
		var imm int32
		imm, err = immediate(offset, 13)
		if err != nil {
			err = ErrLabelRange
			return
		}
		*linked |= uint32(isa.MakeB(0, 0, 0, 0, imm))
	case isa.J:
		var imm int32
		imm, err = immediate(offset, 21)
		if err != nil {
			err = ErrLabelRange
			return
		}
		*linked |= uint32(isa.MakeJ(0, 0, imm))
	default:
		log.Fatalf("Unable to link label '%s' to line %d: %v", op.LinkLabel, op.LineNo, op.Words)
	}

	return
}

// checkArgs verifies the count of arguments after the mnemonic.
func checkArgs(words []string, count int) (err error) {
	switch {
	case len(words)-1 < count:
		err = ErrOpcodeValueMissing
	case len(words)-1 > count:
		err = ErrOpcodeExtraArgs
	}

	return
}

// address parses an offset(register) operand.
func (asm *Assembler) address(word string) (offset int32, base uint8, err error) {
	match := reAddress.FindStringSubmatch(word)
	if match == nil {
		err = ErrParseAddress(word)
		return
	}

	if len(match[1]) != 0 {
		var value int64
		value, err = asm.valueOf(match[1])
		if err != nil {
			return
		}
		offset, err = immediate(value, 12)
		if err != nil {
			return
		}
	}

	base, err = asm.register(match[2])
	return
}

// target parses a branch or jump target; either a literal byte offset or a
// label to be linked once all labels are known.
func (asm *Assembler) target(word string, bits uint) (offset int32, label string, err error) {
	value, err := asm.valueOf(word)
	if err == nil {
		offset, err = immediate(value, bits)
		if err != nil {
			return
		}
		if offset&1 != 0 {
			err = ErrImmediateAlign
		}
		return
	}

	if !reLabel.MatchString(word) {
		return
	}

	err = nil
	label = word
	return
}

// rMap maps register-register mnemonics to their funct3 and funct7.
var rMap = map[string][2]uint8{
	"add":  {isa.FUNCT3_ADD, isa.FUNCT7_BASE},
	"sub":  {isa.FUNCT3_ADD, isa.FUNCT7_ALT},
	"sll":  {isa.FUNCT3_SLL, isa.FUNCT7_BASE},
	"slt":  {isa.FUNCT3_SLT, isa.FUNCT7_BASE},
	"sltu": {isa.FUNCT3_SLTU, isa.FUNCT7_BASE},
	"xor":  {isa.FUNCT3_XOR, isa.FUNCT7_BASE},
	"srl":  {isa.FUNCT3_SRL, isa.FUNCT7_BASE},
	"sra":  {isa.FUNCT3_SRL, isa.FUNCT7_ALT},
	"or":   {isa.FUNCT3_OR, isa.FUNCT7_BASE},
	"and":  {isa.FUNCT3_AND, isa.FUNCT7_BASE},
}

// iMap maps register-immediate mnemonics to their funct3.
var iMap = map[string]uint8{
	"addi":  isa.FUNCT3_ADD,
	"slti":  isa.FUNCT3_SLT,
	"sltiu": isa.FUNCT3_SLTU,
	"xori":  isa.FUNCT3_XOR,
	"ori":   isa.FUNCT3_OR,
	"andi":  isa.FUNCT3_AND,
}

// shiftMap maps shift-immediate mnemonics to their funct3 and funct7.
var shiftMap = map[string][2]uint8{
	"slli": {isa.FUNCT3_SLL, isa.FUNCT7_BASE},
	"srli": {isa.FUNCT3_SRL, isa.FUNCT7_BASE},
	"srai": {isa.FUNCT3_SRL, isa.FUNCT7_ALT},
}

var loadMap = map[string]uint8{
	"lb":  isa.FUNCT3_BYTE,
	"lh":  isa.FUNCT3_HALF,
	"lw":  isa.FUNCT3_WORD,
	"lbu": isa.FUNCT3_BYTE_U,
	"lhu": isa.FUNCT3_HALF_U,
}

var storeMap = map[string]uint8{
	"sb": isa.FUNCT3_BYTE,
	"sh": isa.FUNCT3_HALF,
	"sw": isa.FUNCT3_WORD,
}

var branchMap = map[string]uint8{
	"beq":  isa.FUNCT3_BEQ,
	"bne":  isa.FUNCT3_BNE,
	"blt":  isa.FUNCT3_BLT,
	"bge":  isa.FUNCT3_BGE,
	"bltu": isa.FUNCT3_BLTU,
	"bgeu": isa.FUNCT3_BGEU,
}

var upperMap = map[string]uint8{
	"lui":   isa.OPCODE_LUI,
	"auipc": isa.OPCODE_AUIPC,
}

// parseWords assembles the words of a single line.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []uint32
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(codes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Addr: asm.currentAddr(), Words: initial_words, Codes: codes, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic := strings.ToLower(words[0])

	// Pseudo-instruction substitutions
	switch {
	case len(words) == 1 && mnemonic == "nop":
		words = []string{"addi", "x0", "x0", "0"}
	case len(words) == 3 && mnemonic == "mv":
		words = []string{"addi", words[1], words[2], "0"}
	case len(words) == 3 && mnemonic == "li":
		words = []string{"addi", words[1], "x0", words[2]}
	case len(words) == 3 && mnemonic == "not":
		words = []string{"xori", words[1], words[2], "-1"}
	case len(words) == 3 && mnemonic == "neg":
		words = []string{"sub", words[1], "x0", words[2]}
	case len(words) == 2 && mnemonic == "j":
		words = []string{"jal", "x0", words[1]}
	case len(words) == 2 && mnemonic == "jal":
		words = []string{"jal", "ra", words[1]}
	case len(words) == 2 && mnemonic == "jalr":
		words = []string{"jalr", "ra", "0(" + words[1] + ")"}
	case len(words) == 1 && mnemonic == "ret":
		words = []string{"jalr", "x0", "0(ra)"}
	default:
		// unchanged
	}
	mnemonic = strings.ToLower(words[0])

	if mnemonic == ".word" {
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var value int64
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			if value < -(1<<31) || value > 0xffffffff {
				err = ErrImmediateRange
				return
			}
			codes = append(codes, uint32(value))
		}
		return
	}

	if rop, ok := rMap[mnemonic]; ok {
		if err = checkArgs(words, 3); err != nil {
			return
		}
		var regs [3]uint8
		for n := range regs {
			regs[n], err = asm.register(words[1+n])
			if err != nil {
				return
			}
		}
		codes = append(codes, uint32(isa.MakeR(isa.OPCODE_OP, regs[0], rop[0], regs[1], regs[2], rop[1])))
		return
	}

	if funct3, ok := iMap[mnemonic]; ok {
		if err = checkArgs(words, 3); err != nil {
			return
		}
		var rd, rs1 uint8
		var value int64
		var imm int32
		if rd, err = asm.register(words[1]); err != nil {
			return
		}
		if rs1, err = asm.register(words[2]); err != nil {
			return
		}
		if value, err = asm.valueOf(words[3]); err != nil {
			return
		}
		if imm, err = immediate(value, 12); err != nil {
			return
		}
		codes = append(codes, uint32(isa.MakeI(isa.OPCODE_OP_IMM, rd, funct3, rs1, imm)))
		return
	}

	if sop, ok := shiftMap[mnemonic]; ok {
		if err = checkArgs(words, 3); err != nil {
			return
		}
		var rd, rs1 uint8
		var value int64
		if rd, err = asm.register(words[1]); err != nil {
			return
		}
		if rs1, err = asm.register(words[2]); err != nil {
			return
		}
		if value, err = asm.valueOf(words[3]); err != nil {
			return
		}
		if value < 0 || value > 31 {
			err = ErrImmediateRange
			return
		}
		codes = append(codes, uint32(isa.MakeShift(isa.OPCODE_OP_IMM, rd, sop[0], rs1, uint8(value), sop[1])))
		return
	}

	if funct3, ok := loadMap[mnemonic]; ok {
		if err = checkArgs(words, 2); err != nil {
			return
		}
		var rd, rs1 uint8
		var imm int32
		if rd, err = asm.register(words[1]); err != nil {
			return
		}
		if imm, rs1, err = asm.address(words[2]); err != nil {
			return
		}
		codes = append(codes, uint32(isa.MakeI(isa.OPCODE_LOAD, rd, funct3, rs1, imm)))
		return
	}

	if funct3, ok := storeMap[mnemonic]; ok {
		if err = checkArgs(words, 2); err != nil {
			return
		}
		var rs1, rs2 uint8
		var imm int32
		if rs2, err = asm.register(words[1]); err != nil {
			return
		}
		if imm, rs1, err = asm.address(words[2]); err != nil {
			return
		}
		codes = append(codes, uint32(isa.MakeS(isa.OPCODE_STORE, funct3, rs1, rs2, imm)))
		return
	}

	if funct3, ok := branchMap[mnemonic]; ok {
		if err = checkArgs(words, 3); err != nil {
			return
		}
		var rs1, rs2 uint8
		var imm int32
		if rs1, err = asm.register(words[1]); err != nil {
			return
		}
		if rs2, err = asm.register(words[2]); err != nil {
			return
		}
		if imm, label, err = asm.target(words[3], 13); err != nil {
			return
		}
		codes = append(codes, uint32(isa.MakeB(isa.OPCODE_BRANCH, funct3, rs1, rs2, imm)))
		return
	}

	if opcode, ok := upperMap[mnemonic]; ok {
		if err = checkArgs(words, 2); err != nil {
			return
		}
		var rd uint8
		var value int64
		if rd, err = asm.register(words[1]); err != nil {
			return
		}
		if value, err = asm.valueOf(words[2]); err != nil {
			return
		}
		if value < -(1<<19) || value > 0xfffff {
			err = ErrImmediateRange
			return
		}
		codes = append(codes, uint32(isa.MakeU(opcode, rd, uint32(value))))
		return
	}

	switch mnemonic {
	case "jal":
		if err = checkArgs(words, 2); err != nil {
			return
		}
		var rd uint8
		var imm int32
		if rd, err = asm.register(words[1]); err != nil {
			return
		}
		if imm, label, err = asm.target(words[2], 21); err != nil {
			return
		}
		codes = append(codes, uint32(isa.MakeJ(isa.OPCODE_JAL, rd, imm)))
	case "jalr":
		if err = checkArgs(words, 2); err != nil {
			return
		}
		var rd, rs1 uint8
		var imm int32
		if rd, err = asm.register(words[1]); err != nil {
			return
		}
		if imm, rs1, err = asm.address(words[2]); err != nil {
			return
		}
		codes = append(codes, uint32(isa.MakeI(isa.OPCODE_JALR, rd, 0, rs1, imm)))
	case "fence":
		if err = checkArgs(words, 0); err != nil {
			return
		}
		codes = append(codes, uint32(isa.MakeI(isa.OPCODE_MISC_MEM, 0, 0, 0, 0x0ff)))
	case "ecall":
		if err = checkArgs(words, 0); err != nil {
			return
		}
		codes = append(codes, uint32(isa.MakeSyscall(isa.FUNCT12_ECALL)))
	case "ebreak":
		if err = checkArgs(words, 0); err != nil {
			return
		}
		codes = append(codes, uint32(isa.MakeSyscall(isa.FUNCT12_EBREAK)))
	default:
		err = ErrOpcodeInvalid
	}

	return
}
