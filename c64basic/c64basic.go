// Package c64basic lists a Commodore 64 BASIC program line by line,
// tokenizing the keyword bytes 0x80-0xCB against the next-line pointer and
// line-number header BASIC stores ahead of each line.
package c64basic

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/sixtyfour/c64core/memory"
)

func readAddr(r memory.Memory, addr uint16) uint16 {
	return memory.ReadWord(r, addr)
}

// List disassembles the BASIC line at pc, returning the line text and the
// pc of the next line. It performs no loop detection: a program whose
// next-line pointer cycles back on itself will make List's caller loop
// forever unless the caller tracks visited addresses.
// On normal program end (next addr == 0x0000) it returns an empty string
// and pc 0x0000. On a token parsing problem it returns an error alongside
// whatever of the line tokenized so far; newPC is 0 in that case since a
// real C64 would not continue listing either.
// NOTE: returns ASCII characters as parsed; mapping to PETSCII display is
// the caller's responsibility.
func List(pc uint16, r memory.Memory) (string, uint16, error) {
	// First entry is the linked list pointer to the next line
	newPC := readAddr(r, pc)
	pc += 2
	// Return an empty string and PC = 0x0000 for end of program.
	if newPC == 0x0000 {
		return "", 0x0000, nil
	}

	// Next 2 are line number also stored in little endian so we can just use readAddr again.
	lineNum := readAddr(r, pc)
	pc += 2

	// This is going to be built up as we read tokens so don't use strings directly.
	var b bytes.Buffer

	// Write the line number
	b.WriteString(fmt.Sprintf("%d ", lineNum))

	// Read until we reach a NUL indicating EOL.
	for {
		tok := r.Read(pc)
		pc++
		if tok == 0x00 {
			break
		}
		// Only defined for 0x00-0xCB (below 0x80 is just ascii chars)
		if tok > 0xCB {
			return b.String(), 0, errors.New("?SYNTAX  ERROR")
		}
		if t, ok := tokenTable[tok]; ok {
			b.WriteString(t)
		} else {
			b.WriteString(fmt.Sprintf("%c", tok))
		}
	}
	return b.String(), newPC, nil
}

// tokenTable maps a BASIC token byte (0x80-0xCB) to its keyword text, built
// once at init time the same way opcode.Table is built: a flat lookup over
// a fixed byte range rather than a per-byte switch.
var tokenTable map[uint8]string

type tokenRow struct {
	tok uint8
	kw  string
}

var tokens = []tokenRow{
	{0x80, "END"}, {0x81, "FOR"}, {0x82, "NEXT"}, {0x83, "DATA"},
	{0x84, "INPUT#"}, {0x85, "INPUT"}, {0x86, "DIM"}, {0x87, "READ"},
	{0x88, "LET"}, {0x89, "GOTO"}, {0x8A, "RUN"}, {0x8B, "IF"},
	{0x8C, "RESTORE"}, {0x8D, "GOSUB"}, {0x8E, "RETURN"}, {0x8F, "REM"},
	{0x90, "STOP"}, {0x91, "ON"}, {0x92, "WAIT"}, {0x93, "LOAD"},
	{0x94, "SAVE"}, {0x95, "VERIFY"}, {0x96, "DEF"}, {0x97, "POKE"},
	{0x98, "PRINT#"}, {0x99, "PRINT"}, {0x9A, "CONT"}, {0x9B, "LIST"},
	{0x9C, "CLR"}, {0x9D, "CMD"}, {0x9E, "SYS"}, {0x9F, "OPEN"},
	{0xA0, "CLOSE"}, {0xA1, "GET"}, {0xA2, "NEW"}, {0xA3, "TAB("},
	{0xA4, "TO"}, {0xA5, "FN"}, {0xA6, "SPC("}, {0xA7, "THEN"},
	{0xA8, "NOT"}, {0xA9, "STEP"}, {0xAA, "+"}, {0xAB, "−"},
	{0xAC, "*"}, {0xAD, "/"}, {0xAE, "^"}, {0xAF, "AND"},
	{0xB0, "OR"}, {0xB1, ">"}, {0xB2, "="}, {0xB3, "<"},
	{0xB4, "SGN"}, {0xB5, "INT"}, {0xB6, "ABS"}, {0xB7, "USR"},
	{0xB8, "FRE"}, {0xB9, "POS"}, {0xBA, "SQR"}, {0xBB, "RND"},
	{0xBC, "LOG"}, {0xBD, "EXP"}, {0xBE, "COS"}, {0xBF, "SIN"},
	{0xC0, "TAN"}, {0xC1, "ATN"}, {0xC2, "PEEK"}, {0xC3, "LEN"},
	{0xC4, "STR$"}, {0xC5, "VAL"}, {0xC6, "ASC"}, {0xC7, "CHR$"},
	{0xC8, "LEFT$"}, {0xC9, "RIGHT$"}, {0xCA, "MID$"}, {0xCB, "GO"},
}

func init() {
	tokenTable = make(map[uint8]string, len(tokens))
	for _, r := range tokens {
		tokenTable[r.tok] = r.kw
	}
}
