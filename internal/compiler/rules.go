package compiler

import "github.com/tofu-tigre/clox/internal/token"

type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix, infix parseFn
	prec          precedence
}

// rules is the Pratt table: for each token type, the prefix parser to use
// when it starts an expression, the infix parser to use when it appears
// mid-expression, and the binding precedence of that infix use. Built in
// an init() (rather than a composite literal naming every token) because
// several entries are defined in terms of others (binary shares one
// parseFn across every arithmetic/comparison operator).
var rules map[token.Type]parseRule

func init() {
	rules = map[token.Type]parseRule{
		token.LEFT_PAREN:    {prefix: (*Compiler).grouping},
		token.MINUS:         {prefix: (*Compiler).unary, infix: (*Compiler).binary, prec: precTerm},
		token.PLUS:          {infix: (*Compiler).binary, prec: precTerm},
		token.SLASH:         {infix: (*Compiler).binary, prec: precFactor},
		token.STAR:          {infix: (*Compiler).binary, prec: precFactor},
		token.BANG:          {prefix: (*Compiler).unary},
		token.BANG_EQUAL:    {infix: (*Compiler).binary, prec: precEquality},
		token.EQUAL_EQUAL:   {infix: (*Compiler).binary, prec: precEquality},
		token.GREATER:       {infix: (*Compiler).binary, prec: precComparison},
		token.GREATER_EQUAL: {infix: (*Compiler).binary, prec: precComparison},
		token.LESS:          {infix: (*Compiler).binary, prec: precComparison},
		token.LESS_EQUAL:    {infix: (*Compiler).binary, prec: precComparison},
		token.IDENTIFIER:    {prefix: (*Compiler).variable},
		token.STRING:        {prefix: (*Compiler).stringLiteral},
		token.NUMBER:        {prefix: (*Compiler).number},
		token.AND:           {infix: (*Compiler).and_, prec: precAnd},
		token.OR:            {infix: (*Compiler).or_, prec: precOr},
		token.FALSE:         {prefix: (*Compiler).literal},
		token.TRUE:          {prefix: (*Compiler).literal},
		token.NIL:           {prefix: (*Compiler).literal},
	}
}

func getRule(t token.Type) parseRule {
	return rules[t]
}

// parsePrecedence is the core of the Pratt parser: it consumes a prefix
// expression, then repeatedly consumes infix operators whose precedence
// is at least prec, left-associating as it goes.
func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	prefix := getRule(c.previous.Type).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= precAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.current.Type).prec {
		c.advance()
		infix := getRule(c.previous.Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQUAL) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) expression() {
	c.parsePrecedence(precAssignment)
}
