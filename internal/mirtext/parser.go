package mirtext

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"drift/internal/diag"
	"drift/internal/mir"
	"drift/internal/source"
	"drift/internal/types"
)

// Parser builds a mir.Module from the textual MIR form. Ошибки копятся в
// Reporter; парсер старается восстановиться и дочитать файл до конца, чтобы
// показать пользователю максимум проблем за один прогон.
type Parser struct {
	file     *source.File
	sc       *Scanner
	types    *types.Interner
	reporter diag.Reporter

	tok    Token
	failed bool

	module *mir.Module

	// Состояние текущей функции.
	fn     *mir.Func
	locals map[string]mir.LocalID
	// fnSpanFixups lists statements whose fndecl/closure provenance was
	// written without an explicit range; their span becomes the enclosing
	// function span once it is known.
	fnSpanFixups []provFixup
}

// provFixup addresses a provenance slot inside the function being parsed.
// instr == -1 means the block terminator.
type provFixup struct {
	block int
	instr int
}

// ParseFile parses one MIR file into a module. The boolean result is false
// when at least one parse diagnostic was emitted; the module is still
// returned so that dump tooling can show what was recovered.
func ParseFile(file *source.File, typesIn *types.Interner, reporter diag.Reporter) (*mir.Module, bool) {
	p := &Parser{
		file:     file,
		sc:       NewScanner(file, reporter),
		types:    typesIn,
		reporter: reporter,
	}
	p.next()
	m := p.parseModule()
	return m, !p.failed && p.sc.Errs() == 0
}

func (p *Parser) next() {
	p.tok = p.sc.Next()
}

func (p *Parser) atPunct(text string) bool {
	return p.tok.Kind == TokPunct && p.tok.Text == text
}

func (p *Parser) atIdent(text string) bool {
	return p.tok.Kind == TokIdent && p.tok.Text == text
}

func (p *Parser) errorAt(code diag.Code, sp source.Span, msg string) {
	p.failed = true
	diag.ReportError(p.reporter, code, sp, msg).Emit()
}

func (p *Parser) errorHere(code diag.Code, msg string) {
	p.errorAt(code, p.tok.Span, msg)
}

// expectPunct consumes the expected punctuation or reports an error. The
// offending token is left in place for the caller's recovery logic.
func (p *Parser) expectPunct(text string) bool {
	if p.atPunct(text) {
		p.next()
		return true
	}
	p.errorHere(diag.ParseUnexpectedToken, fmt.Sprintf("expected %q, found %s", text, p.describeTok()))
	return false
}

func (p *Parser) describeTok() string {
	if p.tok.Kind == TokEOF {
		return "end of file"
	}
	if p.tok.Text != "" {
		return fmt.Sprintf("%q", p.tok.Text)
	}
	return p.tok.Kind.String()
}

func (p *Parser) parseModule() *mir.Module {
	name := strings.TrimSuffix(filepath.Base(p.file.Path), filepath.Ext(p.file.Path))
	if p.atIdent("module") {
		p.next()
		if p.tok.Kind == TokIdent {
			name = p.tok.Text
			p.next()
		} else {
			p.errorHere(diag.ParseUnexpectedToken, "expected module name")
		}
	}
	p.module = mir.NewModule(name)

	for p.tok.Kind != TokEOF {
		if p.atIdent("fn") {
			p.parseFunc()
			continue
		}
		p.errorHere(diag.ParseUnexpectedToken, fmt.Sprintf("expected 'fn', found %s", p.describeTok()))
		p.syncToFunc()
	}
	return p.module
}

// syncToFunc skips tokens until the next top-level 'fn' or EOF.
func (p *Parser) syncToFunc() {
	for p.tok.Kind != TokEOF && !p.atIdent("fn") {
		p.next()
	}
}

func (p *Parser) parseFunc() {
	fnStart := p.tok.Span.Start
	p.next() // fn

	f := &mir.Func{Prov: mir.Provenance{Kind: mir.ProvFuncDecl}}
	if p.tok.Kind != TokGlobal {
		p.errorHere(diag.ParseUnexpectedToken, "expected function name after 'fn'")
		p.syncToFunc()
		return
	}
	f.Name = p.tok.Text
	nameSpan := p.tok.Span
	p.next()

	p.fn = f
	p.locals = make(map[string]mir.LocalID)
	p.fnSpanFixups = p.fnSpanFixups[:0]

	p.parseParams()

	f.Result = p.types.Builtins().Unit
	if p.atPunct("->") {
		p.next()
		f.Result = p.parseType()
	}
	if p.atIdent("noreturn") {
		f.NoReturn = true
		p.next()
	}

	provExplicit := false
	if p.tok.Kind == TokAnnot {
		prov, hasRange := p.parseProv(source.Span{})
		switch prov.Kind {
		case mir.ProvFuncDecl, mir.ProvClosure:
			f.Prov = prov
			provExplicit = hasRange
		default:
			p.errorAt(diag.ParseBadProvenance, p.tok.Span,
				"function header accepts only !fndecl or !closure")
		}
	}

	if !p.expectPunct("{") {
		p.syncToFunc()
		return
	}

	p.parseBlocks()

	fnEnd := p.tok.Span.End // '}' or wherever recovery stopped
	if p.atPunct("}") {
		p.next()
	}
	f.Span = source.Span{File: p.file.ID, Start: fnStart, End: fnEnd}
	if !provExplicit {
		f.Prov.Span = f.Span
	}
	for _, fx := range p.fnSpanFixups {
		if fx.instr < 0 {
			f.Blocks[fx.block].Term.Prov.Span = f.Span
		} else {
			f.Blocks[fx.block].Instrs[fx.instr].Prov.Span = f.Span
		}
	}

	if p.module.FuncNamed(f.Name) != nil {
		p.errorAt(diag.ParseDuplicateFunc, nameSpan,
			fmt.Sprintf("function @%s is already defined", f.Name))
	}
	p.module.AddFunc(f)
	p.fn = nil
	p.locals = nil
}

func (p *Parser) parseParams() {
	if !p.expectPunct("(") {
		return
	}
	for !p.atPunct(")") && p.tok.Kind != TokEOF {
		if p.tok.Kind != TokLocal {
			p.errorHere(diag.ParseUnexpectedToken, "expected parameter %name")
			p.next()
			continue
		}
		name := p.tok.Text
		sp := p.tok.Span
		p.next()
		p.expectPunct(":")
		ty := p.parseType()

		if _, dup := p.locals[name]; dup {
			p.errorAt(diag.ParseDuplicateLocal, sp,
				fmt.Sprintf("parameter %%%s is already declared", name))
		} else {
			id := mir.LocalID(len(p.fn.Locals))
			p.fn.Locals = append(p.fn.Locals, mir.Local{Name: name, Type: ty, Span: sp, Param: true})
			p.locals[name] = id
			p.fn.NumParams++
		}

		if p.atPunct(",") {
			p.next()
		}
	}
	p.expectPunct(")")
}

func (p *Parser) parseType() types.TypeID {
	if p.tok.Kind != TokIdent {
		p.errorHere(diag.ParseUnexpectedToken, "expected type name")
		return p.types.Builtins().Invalid
	}
	name := p.tok.Text
	sp := p.tok.Span
	p.next()

	b := p.types.Builtins()
	switch name {
	case "unit":
		return b.Unit
	case "bool":
		return b.Bool
	case "string":
		return b.String
	case "int":
		return b.Int
	case "uint":
		return b.Uint
	case "float":
		return b.Float
	}
	for _, base := range []struct {
		prefix string
		make   func(types.Width) types.Type
	}{
		{"int", types.MakeInt},
		{"uint", types.MakeUint},
		{"float", types.MakeFloat},
	} {
		rest, ok := strings.CutPrefix(name, base.prefix)
		if !ok {
			continue
		}
		switch rest {
		case "8":
			return p.types.Intern(base.make(types.Width8))
		case "16":
			return p.types.Intern(base.make(types.Width16))
		case "32":
			return p.types.Intern(base.make(types.Width32))
		case "64":
			return p.types.Intern(base.make(types.Width64))
		}
	}
	p.errorAt(diag.ParseUnknownType, sp, fmt.Sprintf("unknown type %q", name))
	return b.Invalid
}

// isBlockLabel matches bbN names.
func isBlockLabel(text string) bool {
	rest, ok := strings.CutPrefix(text, "bb")
	if !ok || rest == "" {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return false
		}
	}
	return true
}

func (p *Parser) parseBlocks() {
	for {
		switch {
		case p.tok.Kind == TokEOF || p.atPunct("}"):
			return
		case p.tok.Kind == TokIdent && isBlockLabel(p.tok.Text):
			p.parseBlock()
		default:
			p.errorHere(diag.ParseUnexpectedToken,
				fmt.Sprintf("expected block label, found %s", p.describeTok()))
			p.syncStmt()
		}
	}
}

func (p *Parser) parseBlock() {
	labelSpan := p.tok.Span
	n, _ := strconv.Atoi(p.tok.Text[2:])
	want := len(p.fn.Blocks)
	if n != want {
		// Метки обязаны идти плотно: bb0, bb1, ...
		p.errorAt(diag.ParseDuplicateBlock, labelSpan,
			fmt.Sprintf("block label bb%d out of sequence, expected bb%d", n, want))
	}
	p.next()
	p.expectPunct(":")

	bb := mir.Block{ID: mir.BlockID(want)}
	blockIdx := len(p.fn.Blocks)
	p.fn.Blocks = append(p.fn.Blocks, bb)

	terminated := false
	for {
		if p.tok.Kind == TokEOF || p.atPunct("}") {
			break
		}
		if p.tok.Kind == TokIdent && isBlockLabel(p.tok.Text) {
			break
		}
		if terminated {
			p.errorHere(diag.ParseUnexpectedToken, "statement after block terminator")
			p.syncStmt()
			continue
		}
		terminated = p.parseStmt(blockIdx)
	}
	if !terminated {
		p.errorAt(diag.ParseMissingTerminator, labelSpan,
			fmt.Sprintf("block bb%d has no terminator", want))
	}
}

// syncStmt skips tokens until something that can start a statement, a block
// label, '}' or EOF. The current token is always consumed so that recovery
// makes progress.
func (p *Parser) syncStmt() {
	p.next()
	for {
		switch {
		case p.tok.Kind == TokEOF, p.atPunct("}"), p.tok.Kind == TokLocal:
			return
		case p.tok.Kind == TokIdent:
			switch p.tok.Text {
			case "ret", "goto", "br", "switch", "unreachable", "call", "nop", "fn":
				return
			}
			if isBlockLabel(p.tok.Text) {
				return
			}
		}
		p.next()
	}
}

// parseStmt parses one instruction or terminator; reports whether it was a
// terminator.
func (p *Parser) parseStmt(blockIdx int) bool {
	switch {
	case p.tok.Kind == TokLocal:
		p.parseAssign(blockIdx)
		return false
	case p.atIdent("call"):
		p.parseCall(blockIdx, false, 0, p.tok.Span)
		return false
	case p.atIdent("nop"):
		sp := p.tok.Span
		p.next()
		in := mir.Instr{Kind: mir.InstrNop, Span: sp}
		p.attachInstr(blockIdx, in, sp)
		return false
	case p.tok.Kind == TokIdent:
		switch p.tok.Text {
		case "ret", "goto", "br", "switch", "unreachable":
			p.parseTerm(blockIdx)
			return true
		}
	}
	p.errorHere(diag.ParseUnexpectedToken,
		fmt.Sprintf("expected instruction or terminator, found %s", p.describeTok()))
	p.syncStmt()
	return false
}

// parseAssign handles `%x = const ...`, `%x = copy %y` and `%x = call ...`.
func (p *Parser) parseAssign(blockIdx int) {
	start := p.tok.Span
	dstName := p.tok.Text
	p.next()
	if !p.expectPunct("=") {
		p.syncStmt()
		return
	}
	if p.tok.Kind != TokIdent {
		p.errorHere(diag.ParseUnexpectedToken, "expected 'const', 'copy' or 'call'")
		p.syncStmt()
		return
	}

	switch p.tok.Text {
	case "const":
		p.next()
		ty := p.parseType()
		c, litSpan := p.parseConstLit(ty)
		dst := p.declareLocal(dstName, ty, start)
		sp := start.Cover(litSpan)
		in := mir.Instr{
			Kind:   mir.InstrAssign,
			Span:   sp,
			Assign: mir.AssignInstr{Dst: dst, Src: mir.Operand{Kind: mir.OperandConst, Type: ty, Const: c}},
		}
		p.attachInstr(blockIdx, in, sp)

	case "copy":
		p.next()
		if p.tok.Kind != TokLocal {
			p.errorHere(diag.ParseUnexpectedToken, "expected %name after 'copy'")
			p.syncStmt()
			return
		}
		srcSpan := p.tok.Span
		src, srcType := p.lookupLocal(p.tok.Text, p.tok.Span)
		p.next()
		dst := p.declareLocal(dstName, srcType, start)
		sp := start.Cover(srcSpan)
		in := mir.Instr{
			Kind:   mir.InstrAssign,
			Span:   sp,
			Assign: mir.AssignInstr{Dst: dst, Src: mir.Operand{Kind: mir.OperandCopy, Type: srcType, Local: src}},
		}
		p.attachInstr(blockIdx, in, sp)

	case "call":
		dst := p.declareLocal(dstName, types.NoTypeID, start)
		p.parseCall(blockIdx, true, dst, start)

	default:
		p.errorHere(diag.ParseUnexpectedToken,
			fmt.Sprintf("expected 'const', 'copy' or 'call', found %q", p.tok.Text))
		p.syncStmt()
	}
}

// parseCall parses `call @fn(args)` or `call builtin.name(args)` starting at
// the 'call' keyword.
func (p *Parser) parseCall(blockIdx int, hasDst bool, dst mir.LocalID, start source.Span) {
	p.next() // call

	var callee mir.Callee
	switch {
	case p.tok.Kind == TokGlobal:
		callee = mir.Callee{Kind: mir.CalleeFn, Name: p.tok.Text}
		p.next()
	case p.atIdent("builtin"):
		p.next()
		if !p.expectPunct(".") {
			p.syncStmt()
			return
		}
		if p.tok.Kind != TokIdent {
			p.errorHere(diag.ParseUnexpectedToken, "expected builtin name after 'builtin.'")
			p.syncStmt()
			return
		}
		callee = mir.Callee{Kind: mir.CalleeBuiltin, Name: p.tok.Text, Builtin: builtinByName(p.tok.Text)}
		if callee.Builtin == mir.BuiltinUnknown {
			// Не ошибка: незнакомый примитив остаётся в модуле, но никогда
			// не считается распознанным.
			diag.ReportWarning(p.reporter, diag.ParseUnknownBuiltin, p.tok.Span,
				fmt.Sprintf("unrecognized builtin %q", p.tok.Text)).Emit()
		}
		p.next()
	default:
		p.errorHere(diag.ParseUnexpectedToken, "expected @fn or builtin.name after 'call'")
		p.syncStmt()
		return
	}

	end := p.tok.Span
	if !p.expectPunct("(") {
		p.syncStmt()
		return
	}
	var args []mir.Operand
	for !p.atPunct(")") && p.tok.Kind != TokEOF {
		args = append(args, p.parseOperand())
		if p.atPunct(",") {
			p.next()
			continue
		}
		break
	}
	end = p.tok.Span
	p.expectPunct(")")

	sp := start.Cover(end)
	in := mir.Instr{
		Kind: mir.InstrCall,
		Span: sp,
		Call: mir.CallInstr{HasDst: hasDst, Dst: dst, Callee: callee, Args: args},
	}
	p.attachInstr(blockIdx, in, sp)
}

func builtinByName(name string) mir.BuiltinKind {
	switch name {
	case "static_report":
		return mir.BuiltinStaticReport
	case "trap":
		return mir.BuiltinTrap
	default:
		return mir.BuiltinUnknown
	}
}

func (p *Parser) parseTerm(blockIdx int) {
	start := p.tok.Span
	term := mir.Terminator{Span: start}

	switch p.tok.Text {
	case "ret":
		p.next()
		term.Kind = mir.TermReturn
		if p.startsOperand() {
			opSpan := p.tok.Span
			term.Return = mir.ReturnTerm{HasValue: true, Value: p.parseOperand()}
			term.Span = start.Cover(opSpan)
		}

	case "goto":
		p.next()
		term.Kind = mir.TermGoto
		tgt, tgtSpan := p.parseBlockRef()
		term.Goto = mir.GotoTerm{Target: tgt}
		term.Span = start.Cover(tgtSpan)

	case "br":
		p.next()
		term.Kind = mir.TermBr
		cond := p.parseOperand()
		p.expectPunct(",")
		then, _ := p.parseBlockRef()
		p.expectPunct(",")
		els, elsSpan := p.parseBlockRef()
		term.Br = mir.BrTerm{Cond: cond, Then: then, Else: els}
		term.Span = start.Cover(elsSpan)

	case "switch":
		p.next()
		term.Kind = mir.TermSwitch
		term.Switch.Value = p.parseOperand()
		if p.expectPunct("[") {
			for !p.atPunct("]") && p.tok.Kind != TokEOF {
				val, ok := p.parseCaseValue()
				if !ok {
					p.syncStmt()
					return
				}
				p.expectPunct(":")
				tgt, _ := p.parseBlockRef()
				term.Switch.Cases = append(term.Switch.Cases, mir.SwitchCase{Value: val, Target: tgt})
				if p.atPunct(",") {
					p.next()
				}
			}
			p.expectPunct("]")
		}
		if p.atIdent("else") {
			p.next()
		} else {
			p.errorHere(diag.ParseUnexpectedToken, "expected 'else' after switch cases")
		}
		def, defSpan := p.parseBlockRef()
		term.Switch.Default = def
		term.Span = start.Cover(defSpan)

	case "unreachable":
		p.next()
		term.Kind = mir.TermUnreachable
	}

	prov, needsFnSpan := p.parseOptionalProv(term.Span)
	term.Prov = prov
	p.fn.Blocks[blockIdx].Term = term
	if needsFnSpan {
		p.fnSpanFixups = append(p.fnSpanFixups, provFixup{block: blockIdx, instr: -1})
	}
}

// attachInstr appends the instruction, then parses its optional provenance
// annotation.
func (p *Parser) attachInstr(blockIdx int, in mir.Instr, ownSpan source.Span) {
	prov, needsFnSpan := p.parseOptionalProv(ownSpan)
	in.Prov = prov
	p.fn.Blocks[blockIdx].Instrs = append(p.fn.Blocks[blockIdx].Instrs, in)
	if needsFnSpan {
		p.fnSpanFixups = append(p.fnSpanFixups,
			provFixup{block: blockIdx, instr: len(p.fn.Blocks[blockIdx].Instrs) - 1})
	}
}

// parseOptionalProv parses an optional !annotation after a statement.
// ownSpan is the default range for !ret/!iret/!switch; fndecl and closure
// without an explicit range are resolved to the function span later.
func (p *Parser) parseOptionalProv(ownSpan source.Span) (mir.Provenance, bool) {
	if p.tok.Kind != TokAnnot {
		return mir.Provenance{}, false
	}
	prov, hasRange := p.parseProv(ownSpan)
	needsFnSpan := !hasRange && (prov.Kind == mir.ProvFuncDecl || prov.Kind == mir.ProvClosure)
	return prov, needsFnSpan
}

// parseProv parses the !kind[(start..end)] annotation at the current token.
func (p *Parser) parseProv(defaultSpan source.Span) (mir.Provenance, bool) {
	annSpan := p.tok.Span
	name := p.tok.Text
	p.next()

	prov := mir.Provenance{Span: defaultSpan}
	switch name {
	case "none":
		prov.Kind = mir.ProvNone
	case "fndecl":
		prov.Kind = mir.ProvFuncDecl
	case "closure":
		prov.Kind = mir.ProvClosure
	case "switch":
		prov.Kind = mir.ProvSwitch
	case "ret":
		prov.Kind = mir.ProvReturn
	case "iret":
		prov.Kind = mir.ProvReturn
		prov.Implicit = true
	default:
		p.errorAt(diag.ParseBadProvenance, annSpan,
			fmt.Sprintf("unknown provenance kind %q", name))
	}

	if !p.atPunct("(") {
		return prov, false
	}
	p.next()
	lo, okLo := p.parseOffset()
	if !p.atPunct("..") {
		p.errorHere(diag.ParseBadProvenance, "expected '..' in provenance range")
		p.syncStmt()
		return prov, false
	}
	p.next()
	hi, okHi := p.parseOffset()
	p.expectPunct(")")
	if okLo && okHi {
		if hi < lo {
			p.errorAt(diag.ParseBadProvenance, annSpan, "provenance range end before start")
		} else {
			prov.Span = source.Span{File: p.file.ID, Start: lo, End: hi}
			return prov, true
		}
	}
	return prov, false
}

// parseOffset parses a byte offset inside a provenance range.
func (p *Parser) parseOffset() (uint32, bool) {
	if p.tok.Kind != TokInt {
		p.errorHere(diag.ParseBadProvenance, "expected byte offset")
		return 0, false
	}
	v, err := strconv.Atoi(p.tok.Text)
	if err != nil || v < 0 {
		p.errorHere(diag.ParseBadNumber, fmt.Sprintf("bad offset %q", p.tok.Text))
		p.next()
		return 0, false
	}
	u, err := safecast.Conv[uint32](v)
	if err != nil {
		p.errorHere(diag.ParseBadNumber, fmt.Sprintf("offset %d does not fit a file position", v))
		p.next()
		return 0, false
	}
	p.next()
	return u, true
}

func (p *Parser) parseBlockRef() (mir.BlockID, source.Span) {
	sp := p.tok.Span
	if p.tok.Kind != TokIdent || !isBlockLabel(p.tok.Text) {
		p.errorHere(diag.ParseUnknownBlock,
			fmt.Sprintf("expected block reference bbN, found %s", p.describeTok()))
		return 0, sp
	}
	n, _ := strconv.Atoi(p.tok.Text[2:])
	p.next()
	return mir.BlockID(n), sp
}

func (p *Parser) parseCaseValue() (int64, bool) {
	if p.tok.Kind != TokInt {
		p.errorHere(diag.ParseUnexpectedToken, "expected integer case value")
		return 0, false
	}
	v, err := strconv.ParseInt(p.tok.Text, 10, 64)
	if err != nil {
		p.errorHere(diag.ParseBadNumber, fmt.Sprintf("bad case value %q", p.tok.Text))
		p.next()
		return 0, false
	}
	p.next()
	return v, true
}

// startsOperand reports whether the current token can begin an operand.
func (p *Parser) startsOperand() bool {
	switch p.tok.Kind {
	case TokLocal, TokInt, TokFloat, TokString:
		return true
	case TokIdent:
		return p.tok.Text == "true" || p.tok.Text == "false" || p.tok.Text == "unit"
	}
	return false
}

func (p *Parser) parseOperand() mir.Operand {
	b := p.types.Builtins()
	switch p.tok.Kind {
	case TokLocal:
		id, ty := p.lookupLocal(p.tok.Text, p.tok.Span)
		p.next()
		return mir.Operand{Kind: mir.OperandCopy, Type: ty, Local: id}

	case TokInt:
		text := p.tok.Text
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			p.errorHere(diag.ParseBadNumber, fmt.Sprintf("bad integer literal %q", text))
		}
		p.next()
		return mir.Operand{Kind: mir.OperandConst, Type: b.Int,
			Const: mir.Const{Kind: mir.ConstInt, Type: b.Int, Text: text, IntValue: v}}

	case TokFloat:
		text := p.tok.Text
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.errorHere(diag.ParseBadNumber, fmt.Sprintf("bad float literal %q", text))
		}
		p.next()
		return mir.Operand{Kind: mir.OperandConst, Type: b.Float,
			Const: mir.Const{Kind: mir.ConstFloat, Type: b.Float, Text: text, FloatValue: v}}

	case TokString:
		v := p.tok.Text
		p.next()
		return mir.Operand{Kind: mir.OperandConst, Type: b.String,
			Const: mir.Const{Kind: mir.ConstString, Type: b.String, StringValue: v}}

	case TokIdent:
		switch p.tok.Text {
		case "true", "false":
			v := p.tok.Text == "true"
			p.next()
			return mir.Operand{Kind: mir.OperandConst, Type: b.Bool,
				Const: mir.Const{Kind: mir.ConstBool, Type: b.Bool, BoolValue: v}}
		case "unit":
			p.next()
			return mir.Operand{Kind: mir.OperandConst, Type: b.Unit,
				Const: mir.Const{Kind: mir.ConstUnit, Type: b.Unit}}
		}
	}
	p.errorHere(diag.ParseUnexpectedToken,
		fmt.Sprintf("expected operand, found %s", p.describeTok()))
	p.next()
	return mir.Operand{Kind: mir.OperandConst, Type: b.Invalid}
}

// parseConstLit parses the literal of a `const TYPE LIT` instruction and
// coerces it to the declared type's constant kind.
func (p *Parser) parseConstLit(ty types.TypeID) (mir.Const, source.Span) {
	sp := p.tok.Span
	tt, _ := p.types.Lookup(ty)

	switch tt.Kind {
	case types.KindUnit:
		if p.atIdent("unit") {
			p.next()
		}
		return mir.Const{Kind: mir.ConstUnit, Type: ty}, sp

	case types.KindBool:
		if p.atIdent("true") || p.atIdent("false") {
			v := p.tok.Text == "true"
			p.next()
			return mir.Const{Kind: mir.ConstBool, Type: ty, BoolValue: v}, sp
		}

	case types.KindString:
		if p.tok.Kind == TokString {
			v := p.tok.Text
			p.next()
			return mir.Const{Kind: mir.ConstString, Type: ty, StringValue: v}, sp
		}

	case types.KindInt:
		if p.tok.Kind == TokInt {
			text := p.tok.Text
			v, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				p.errorHere(diag.ParseBadNumber, fmt.Sprintf("bad integer literal %q", text))
			}
			p.next()
			return mir.Const{Kind: mir.ConstInt, Type: ty, Text: text, IntValue: v}, sp
		}

	case types.KindUint:
		if p.tok.Kind == TokInt && !strings.HasPrefix(p.tok.Text, "-") {
			text := p.tok.Text
			v, err := strconv.ParseUint(text, 10, 64)
			if err != nil {
				p.errorHere(diag.ParseBadNumber, fmt.Sprintf("bad unsigned literal %q", text))
			}
			p.next()
			return mir.Const{Kind: mir.ConstUint, Type: ty, Text: text, UintValue: v}, sp
		}

	case types.KindFloat:
		if p.tok.Kind == TokFloat || p.tok.Kind == TokInt {
			text := p.tok.Text
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				p.errorHere(diag.ParseBadNumber, fmt.Sprintf("bad float literal %q", text))
			}
			p.next()
			return mir.Const{Kind: mir.ConstFloat, Type: ty, Text: text, FloatValue: v}, sp
		}
	}

	p.errorHere(diag.ParseUnexpectedToken,
		fmt.Sprintf("literal %s does not match the declared type", p.describeTok()))
	p.next()
	return mir.Const{Kind: mir.ConstUnit, Type: ty}, sp
}

// declareLocal returns the id of name, creating the local on first write.
func (p *Parser) declareLocal(name string, ty types.TypeID, sp source.Span) mir.LocalID {
	if id, ok := p.locals[name]; ok {
		return id
	}
	id := mir.LocalID(len(p.fn.Locals))
	p.fn.Locals = append(p.fn.Locals, mir.Local{Name: name, Type: ty, Span: sp})
	p.locals[name] = id
	return id
}

// lookupLocal resolves a use of %name. Unknown names are reported and bound
// to a fresh local so downstream indexes stay valid.
func (p *Parser) lookupLocal(name string, sp source.Span) (mir.LocalID, types.TypeID) {
	if id, ok := p.locals[name]; ok {
		return id, p.fn.Locals[id].Type
	}
	p.errorAt(diag.ParseUnknownLocal, sp, fmt.Sprintf("local %%%s is not declared", name))
	return p.declareLocal(name, types.NoTypeID, sp), types.NoTypeID
}
