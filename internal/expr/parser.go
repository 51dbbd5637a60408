package expr

import "github.com/cdeg/gypn/internal/pygerr"

const opParse pygerr.Op = "expr.Parse"

// parser is a Pratt parser over three precedence tiers, ordered
// lowest-to-highest: equality, comparison, logical.
// Lowest precedence binds loosest and sits outermost in the recursive
// descent; highest precedence binds tightest and sits innermost,
// closest to the atoms, so `a && b == c` groups as `(a && b) == c`.
type parser struct {
	lex *lexer
	cur token
}

// Parse lexes and parses src into an expression AST.
func Parse(src string) (Node, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	n, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, pygerr.E(opParse, pygerr.ASTFatal, "unexpected trailing input")
	}
	return n, nil
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

// parseEquality handles ==/!=, the lowest-precedence (outermost) tier.
func (p *parser) parseEquality() (Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokEq || p.cur.kind == tokNotEq {
		op := OpEq
		if p.cur.kind == tokNotEq {
			op = OpNotEq
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseComparison handles <, >, <=, >=, the middle tier.
func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseLogical()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.cur.kind {
		case tokLT:
			op = OpLT
		case tokGT:
			op = OpGT
		case tokLTE:
			op = OpLTE
		case tokGTE:
			op = OpGTE
		default:
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseLogical()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

// parseLogical handles &&/and and ||/or, the highest-precedence
// (innermost, tightest-binding) tier, left-associative.
func (p *parser) parseLogical() (Node, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokAnd || p.cur.kind == tokOr {
		op := OpAnd
		if p.cur.kind == tokOr {
			op = OpOr
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAtom() (Node, error) {
	switch p.cur.kind {
	case tokIdent:
		n := Name{Ident: p.cur.str}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return n, nil
	case tokString:
		n := Str{Value: p.cur.str}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return n, nil
	case tokInt:
		n := Int{Value: p.cur.num}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return n, nil
	case tokEOF:
		return nil, pygerr.E(opParse, pygerr.ASTWarn, "unexpected end of expression")
	default:
		return nil, pygerr.E(opParse, pygerr.ASTFatal, "expected identifier, string, or integer")
	}
}
