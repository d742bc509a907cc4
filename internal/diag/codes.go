package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// MIR text reader
	ParseInfo              Code = 1000
	ParseUnexpectedToken   Code = 1001
	ParseUnterminatedString Code = 1002
	ParseBadNumber         Code = 1003
	ParseUnknownType       Code = 1004
	ParseUnknownLocal      Code = 1005
	ParseUnknownBlock      Code = 1006
	ParseDuplicateBlock    Code = 1007
	ParseDuplicateLocal    Code = 1008
	ParseDuplicateFunc     Code = 1009
	ParseBadProvenance     Code = 1010
	ParseUnknownBuiltin    Code = 1011
	ParseMissingTerminator Code = 1012
	ParseUnknownChar       Code = 1013

	// Verifier
	VerInfo             Code = 2000
	VerBrokenInvariant  Code = 2001

	// Dataflow diagnostics
	FlowInfo                Code = 3000
	FlowMissingReturn       Code = 3001
	FlowNonExhaustiveSwitch Code = 3002
	FlowReturnFromNoReturn  Code = 3003
	FlowStaticReport        Code = 3004

	// IO / driver
	IOInfo         Code = 4000
	IOFileNotFound Code = 4001
	IOReadError    Code = 4002
)

var (
	codeDescription = map[Code]string{
		UnknownCode: "unknown error",

		ParseInfo:               "mir reader info",
		ParseUnexpectedToken:    "unexpected token",
		ParseUnterminatedString: "unterminated string literal",
		ParseBadNumber:          "malformed numeric literal",
		ParseUnknownType:        "unknown type name",
		ParseUnknownLocal:       "reference to undeclared local",
		ParseUnknownBlock:       "reference to undeclared block",
		ParseDuplicateBlock:     "duplicate block label",
		ParseDuplicateLocal:     "duplicate local definition",
		ParseDuplicateFunc:      "duplicate function name",
		ParseBadProvenance:      "malformed provenance annotation",
		ParseUnknownBuiltin:     "unrecognized builtin primitive",
		ParseMissingTerminator:  "block has no terminator",
		ParseUnknownChar:        "unexpected character",

		VerInfo:            "verifier info",
		VerBrokenInvariant: "MIR invariant violated",

		FlowInfo:                "dataflow info",
		FlowMissingReturn:       "missing return",
		FlowNonExhaustiveSwitch: "non-exhaustive switch",
		FlowReturnFromNoReturn:  "return from noreturn function",
		FlowStaticReport:        "static report triggered",

		IOInfo:         "io info",
		IOFileNotFound: "file not found",
		IOReadError:    "failed to read file",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("PAR%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("VER%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("FLW%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
