package latch

// Expr is the recursive filter AST: conjunction, disjunction, negation, and
// field:value atoms.
type Expr interface {
	isExpr()
}

// AndExpr is the conjunction of two sub-expressions.
type AndExpr struct {
	Left, Right Expr
}

// OrExpr is the disjunction of two sub-expressions.
type OrExpr struct {
	Left, Right Expr
}

// NotExpr negates its sub-expression.
type NotExpr struct {
	Expr Expr
}

// FieldValue is a field:value atom. Value is the raw value text; operator
// parsing happens at generation time. Bare marks an identifier written without
// a colon (only the location presence field is legal bare).
type FieldValue struct {
	Field string
	Value string
	Bare  bool
}

func (*AndExpr) isExpr()    {}
func (*OrExpr) isExpr()     {}
func (*NotExpr) isExpr()    {}
func (*FieldValue) isExpr() {}
