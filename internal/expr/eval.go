package expr

import (
	"github.com/cdeg/gypn/internal/pygerr"
	"github.com/cdeg/gypn/internal/varenv"
)

const opEval pygerr.Op = "expr.Eval"

// value is the internal evaluation result: a variable-kind tagged union
// restricted to the kinds this grammar can produce or consume.
type value struct {
	kind varenv.Kind
	str  string
	num  int64
	b    bool
}

// Test parses and evaluates src against env: lex+parse the string,
// then evaluate the resulting AST to a boolean. A bare identifier or
// literal at the top level must itself be boolean-typed to be used as
// a condition test.
func Test(env *varenv.Env, src string) (bool, error) {
	ast, err := Parse(src)
	if err != nil {
		return false, err
	}
	v, err := evalNode(env, ast)
	if err != nil {
		return false, err
	}
	if v.kind != varenv.KindBool {
		return false, pygerr.E(opEval, pygerr.ASTFatal, "condition does not evaluate to a boolean")
	}
	return v.b, nil
}

func evalNode(env *varenv.Env, n Node) (value, error) {
	switch node := n.(type) {
	case Name:
		v, ok := env.Get(node.Ident)
		if !ok {
			return value{}, pygerr.E(opEval, pygerr.GYP, "undefined identifier `"+node.Ident+"`")
		}
		return fromVarValue(v), nil
	case Str:
		return value{kind: varenv.KindString, str: node.Value}, nil
	case Int:
		return value{kind: varenv.KindInt, num: node.Value}, nil
	case Binary:
		return evalBinary(env, node)
	default:
		return value{}, pygerr.E(opEval, pygerr.ASTFatal, "unknown AST node")
	}
}

func fromVarValue(v varenv.Value) value {
	switch v.Kind {
	case varenv.KindString:
		return value{kind: varenv.KindString, str: v.Str}
	case varenv.KindInt:
		return value{kind: varenv.KindInt, num: v.Int}
	case varenv.KindBool:
		return value{kind: varenv.KindBool, b: v.Bool}
	default:
		return value{}
	}
}

func evalBinary(env *varenv.Env, n Binary) (value, error) {
	left, err := evalNode(env, n.Left)
	if err != nil {
		return value{}, err
	}
	right, err := evalNode(env, n.Right)
	if err != nil {
		return value{}, err
	}

	switch n.Op {
	case OpEq, OpNotEq:
		return evalEquality(n.Op, left, right)
	case OpLT, OpGT, OpLTE, OpGTE:
		return evalComparison(n.Op, left, right)
	case OpAnd, OpOr:
		return evalLogical(n.Op, left, right)
	default:
		return value{}, pygerr.E(opEval, pygerr.ASTFatal, "unknown binary operator")
	}
}

func evalEquality(op BinaryOp, left, right value) (value, error) {
	if left.kind != right.kind {
		return value{}, pygerr.E(opEval, pygerr.GYP, "mismatched operand types in equality comparison")
	}

	var eq bool
	switch left.kind {
	case varenv.KindString:
		eq = left.str == right.str
	case varenv.KindInt:
		eq = left.num == right.num
	case varenv.KindBool:
		eq = left.b == right.b
	default:
		return value{}, pygerr.E(opEval, pygerr.ASTFatal, "unsupported operand kind")
	}

	if op == OpNotEq {
		eq = !eq
	}
	return value{kind: varenv.KindBool, b: eq}, nil
}

func evalComparison(op BinaryOp, left, right value) (value, error) {
	if left.kind != varenv.KindInt || right.kind != varenv.KindInt {
		return value{}, pygerr.E(opEval, pygerr.GYP, "relational operators require integer operands")
	}

	var result bool
	switch op {
	case OpLT:
		result = left.num < right.num
	case OpGT:
		result = left.num > right.num
	case OpLTE:
		result = left.num <= right.num
	case OpGTE:
		result = left.num >= right.num
	}
	return value{kind: varenv.KindBool, b: result}, nil
}

func evalLogical(op BinaryOp, left, right value) (value, error) {
	if left.kind != varenv.KindBool || right.kind != varenv.KindBool {
		return value{}, pygerr.E(opEval, pygerr.GYP, "logical operators require boolean operands")
	}

	var result bool
	switch op {
	case OpAnd:
		result = left.b && right.b
	case OpOr:
		result = left.b || right.b
	}
	return value{kind: varenv.KindBool, b: result}, nil
}
