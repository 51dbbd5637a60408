package expr

// BinaryOp identifies a binary operator, grouped into three precedence
// tiers: equality low, comparison middle, logical high.
type BinaryOp int

const (
	OpEq BinaryOp = iota
	OpNotEq
	OpLT
	OpGT
	OpLTE
	OpGTE
	OpAnd
	OpOr
)

// Node is an expression AST node: one of Name, Str, Int, or Binary.
type Node interface {
	isNode()
}

// Name is an identifier, resolved against a variable environment at
// evaluation time.
type Name struct {
	Ident string
}

// Str is a quoted string literal.
type Str struct {
	Value string
}

// Int is a signed integer literal.
type Int struct {
	Value int64
}

// Binary is a binary operator application.
type Binary struct {
	Op    BinaryOp
	Left  Node
	Right Node
}

func (Name) isNode()   {}
func (Str) isNode()    {}
func (Int) isNode()    {}
func (Binary) isNode() {}
