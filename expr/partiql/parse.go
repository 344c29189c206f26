// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package partiql

import (
	"fmt"
	"strings"

	"github.com/partiql-core/pql/expr"
	"github.com/partiql-core/pql/ion"
	"github.com/partiql-core/pql/perr"
)

// Parse lexes and parses a single query, returning its AST.
func Parse(src string) (expr.Node, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	if !p.at(EOF) {
		return nil, p.errorf(perr.ParseUnexpectedToken, "unexpected trailing input after query")
	}
	return n, nil
}

// ParseExpr lexes and parses a single standalone expression (used by
// tests and by contexts, such as CLI one-liners, that don't need a
// full query).
func ParseExpr(src string) (expr.Node, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.at(EOF) {
		return nil, p.errorf(perr.ParseUnexpectedToken, "unexpected trailing input after expression")
	}
	return n, nil
}

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) cur() Token   { return p.toks[p.pos] }
func (p *parser) at(t TokenType) bool { return p.cur().Type == t }

// atKeyword reports whether the current token is a KEYWORD whose
// canonical spelling matches name.
func (p *parser) atKeyword(name string) bool {
	return p.cur().Type == KEYWORD && p.cur().Keyword == name
}

// atOperator reports whether the current token is an OPERATOR whose
// canonical spelling matches name.
func (p *parser) atOperator(name string) bool {
	return p.cur().Type == OPERATOR && p.cur().Keyword == name
}

func (p *parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// errorf builds a structured parse error positioned at the current
// token. message is used as-is (never a format template); every
// parser error carries LINE_NUMBER, COLUMN_NUMBER, TOKEN_TYPE, and
// TOKEN_VALUE regardless of code, with kv supplying whatever else the
// call site knows (KEYWORD, EXPECTED_TOKEN_TYPE, ...).
func (p *parser) errorf(code perr.Code, message string, kv ...any) error {
	tok := p.cur()
	full := append([]any{
		perr.LineNumber, tok.Pos.Line,
		perr.ColumnNumber, tok.Pos.Column,
		perr.TokenType, tok.Type.String(),
		perr.TokenValue, tok.Value,
	}, kv...)
	return perr.New(code, message, full...)
}

func (p *parser) expect(t TokenType) (Token, error) {
	if !p.at(t) {
		return Token{}, p.errorf(perr.ParseExpectedTokenType,
			fmt.Sprintf("expected %s, found %s", t, p.cur().Type),
			perr.ExpectedTokenType, t.String())
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(name string) error {
	if !p.atKeyword(name) {
		return p.errorf(perr.ParseExpectedKeyword, fmt.Sprintf("expected keyword %s", name), perr.Keyword, name)
	}
	p.advance()
	return nil
}

// ---- top-level query forms ----

func (p *parser) parseQuery() (expr.Node, error) {
	switch {
	case p.atKeyword("SELECT"):
		return p.parseSelect()
	case p.atKeyword("VALUES"):
		return p.parseValues()
	default:
		return p.parseExpr()
	}
}

func (p *parser) parseSelect() (expr.Node, error) {
	p.advance() // SELECT
	sel := &expr.Select{}
	if p.at(STAR) {
		p.advance()
		sel.Star = true
	} else {
		for {
			b, err := p.parseBinding()
			if err != nil {
				return nil, err
			}
			sel.Project = append(sel.Project, b)
			if p.at(COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	if !p.atKeyword("FROM") {
		return nil, p.errorf(perr.ParseSelectMissingFrom, "SELECT must be followed by FROM")
	}
	p.advance()
	from, err := p.parseFromItem()
	if err != nil {
		return nil, err
	}
	sel.From = from
	for p.atKeyword("JOIN") || p.atKeyword("INNER") || p.atKeyword("LEFT") || p.atKeyword("CROSS") {
		j, err := p.parseJoin()
		if err != nil {
			return nil, err
		}
		sel.Joins = append(sel.Joins, j)
	}
	if p.atKeyword("WHERE") {
		p.advance()
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		sel.Where = w
	}
	if p.atKeyword("GROUP") {
		p.advance()
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			if isOrdinalLiteral(p.cur()) {
				return nil, p.errorf(perr.ParseUnsupportedLiteralsGroupby, "GROUP BY keys must be expressions, not literals")
			}
			g, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			sel.GroupBy = append(sel.GroupBy, g)
			if p.at(COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	if p.atKeyword("HAVING") {
		p.advance()
		h, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		sel.Having = h
	}
	if p.atKeyword("ORDER") {
		p.advance()
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			item := expr.OrderItem{Expr: e}
			if p.atKeyword("DESC") {
				p.advance()
				item.Desc = true
			} else if p.atKeyword("ASC") {
				p.advance()
			}
			sel.OrderBy = append(sel.OrderBy, item)
			if p.at(COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	if p.atKeyword("LIMIT") {
		p.advance()
		tok := p.cur()
		if tok.Type != LITERAL || tok.Lit != LitInt {
			return nil, p.errorf(perr.ParseExpectedTokenType, "LIMIT requires an integer literal",
				perr.ExpectedTokenType, LITERAL.String())
		}
		p.advance()
		n := int(tok.Value.(ion.Int))
		sel.Limit = &n
	}
	return sel, nil
}

func isOrdinalLiteral(t Token) bool {
	return t.Type == LITERAL && t.Lit == LitInt
}

func (p *parser) parseBinding() (expr.Binding, error) {
	e, err := p.parseExpr()
	if err != nil {
		return expr.Binding{}, err
	}
	b := expr.Binding{Expr: e}
	if p.atKeyword("AS") {
		p.advance()
		name, err := p.expectIdentFor(perr.ParseExpectedIdentForAlias)
		if err != nil {
			return expr.Binding{}, err
		}
		b.As = name
	} else if ident, ok := e.(expr.Ident); ok {
		b.As = ident.Name
	}
	return b, nil
}

func (p *parser) expectIdentFor(code perr.Code) (string, error) {
	switch p.cur().Type {
	case IDENT:
		return p.advance().Text, nil
	case QUOTED_IDENT:
		return p.advance().Text, nil
	default:
		return "", p.errorf(code, "expected an identifier")
	}
}

func (p *parser) parseFromItem() (expr.FromItem, error) {
	item := expr.FromItem{}
	if p.atKeyword("UNPIVOT") {
		p.advance()
		item.Unpivot = true
	}
	src, err := p.parseExpr()
	if err != nil {
		return expr.FromItem{}, err
	}
	item.Source = src
	if p.atKeyword("AS") {
		p.advance()
		name, err := p.expectIdentFor(perr.ParseExpectedIdentForAlias)
		if err != nil {
			return expr.FromItem{}, err
		}
		item.As = name
	} else if p.at(IDENT) || p.at(QUOTED_IDENT) {
		item.As = p.advance().Text
	}
	if p.atKeyword("AT") {
		p.advance()
		name, err := p.expectIdentFor(perr.ParseExpectedIdentForAt)
		if err != nil {
			return expr.FromItem{}, err
		}
		item.At = name
	}
	return item, nil
}

func (p *parser) parseJoin() (expr.Join, error) {
	kind := expr.InnerJoin
	switch {
	case p.atKeyword("INNER"):
		p.advance()
		if err := p.expectKeyword("JOIN"); err != nil {
			return expr.Join{}, err
		}
	case p.atKeyword("LEFT"):
		p.advance()
		if err := p.expectKeyword("JOIN"); err != nil {
			return expr.Join{}, err
		}
		kind = expr.LeftJoin
	case p.atKeyword("CROSS"):
		p.advance()
		if err := p.expectKeyword("JOIN"); err != nil {
			return expr.Join{}, err
		}
		kind = expr.CrossJoin
	case p.atKeyword("JOIN"):
		p.advance()
	}
	item, err := p.parseFromItem()
	if err != nil {
		return expr.Join{}, err
	}
	j := expr.Join{Kind: kind, Item: item}
	if kind != expr.CrossJoin && p.atKeyword("ON") {
		p.advance()
		on, err := p.parseExpr()
		if err != nil {
			return expr.Join{}, err
		}
		j.On = on
	}
	return j, nil
}

func (p *parser) parseValues() (expr.Node, error) {
	p.advance() // VALUES
	v := &expr.Values{}
	for {
		if !p.at(LPAREN) {
			return nil, p.errorf(perr.ParseExpectedLeftParenValueConstructor, "VALUES rows must be parenthesized")
		}
		p.advance()
		var row []expr.Node
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			row = append(row, e)
			if p.at(COMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		v.Rows = append(v.Rows, row)
		if p.at(COMMA) {
			p.advance()
			continue
		}
		break
	}
	return v, nil
}

// ---- expressions: precedence-climbing cascade ----
// OR < AND < NOT < comparison < BETWEEN/LIKE/IN/IS < + - < * / % < unary < ||/path

func (p *parser) parseExpr() (expr.Node, error) { return p.parseOr() }

func (p *parser) parseOr() (expr.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.atOperator("OR") {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &expr.Logical{Op: expr.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (expr.Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.atOperator("AND") {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &expr.Logical{Op: expr.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (expr.Node, error) {
	if p.atOperator("NOT") {
		p.advance()
		e, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &expr.Not{Expr: e}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (expr.Node, error) {
	left, err := p.parsePredicate()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := cmpOpFor(p.cur())
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parsePredicate()
		if err != nil {
			return nil, err
		}
		left = &expr.Comparison{Op: op, Left: left, Right: right}
	}
}

func cmpOpFor(t Token) (expr.CmpOp, bool) {
	if t.Type != OPERATOR {
		return 0, false
	}
	switch t.Keyword {
	case "=":
		return expr.Equals, true
	case "<>":
		return expr.NotEquals, true
	case "<":
		return expr.Less, true
	case "<=":
		return expr.LessEquals, true
	case ">":
		return expr.Greater, true
	case ">=":
		return expr.GreaterEquals, true
	default:
		return 0, false
	}
}

func (p *parser) parsePredicate() (expr.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	negated := false
	if p.atOperator("NOT") && p.nextIsPredicateKeyword() {
		p.advance()
		negated = true
	}
	switch {
	case p.atOperator("BETWEEN"):
		return p.parseBetween(left, negated)
	case p.atOperator("LIKE"):
		return p.parseLike(left, negated)
	case p.atOperator("IN"):
		return p.parseIn(left, negated)
	case p.atOperator("IS") && !negated:
		return p.parseIs(left)
	}
	if negated {
		// "NOT" was consumed speculatively but nothing matched; this
		// can only happen if nextIsPredicateKeyword raced with a
		// concurrent grammar change, so surface it plainly.
		return nil, p.errorf(perr.ParseUnexpectedOperator, "expected BETWEEN, LIKE, or IN after NOT")
	}
	return left, nil
}

func (p *parser) nextIsPredicateKeyword() bool {
	if p.pos+1 >= len(p.toks) {
		return false
	}
	next := p.toks[p.pos+1]
	return next.Type == OPERATOR && (next.Keyword == "BETWEEN" || next.Keyword == "LIKE" || next.Keyword == "IN")
}

func (p *parser) parseBetween(left expr.Node, negated bool) (expr.Node, error) {
	p.advance() // BETWEEN
	low, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if !p.atOperator("AND") {
		return nil, p.errorf(perr.ParseExpectedKeyword, "expected AND in BETWEEN", perr.Keyword, "AND")
	}
	p.advance()
	high, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &expr.Between{Not: negated, Expr: left, Low: low, High: high}, nil
}

func (p *parser) parseLike(left expr.Node, negated bool) (expr.Node, error) {
	p.advance() // LIKE
	pattern, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	sm := &expr.StringMatch{Expr: left, Pattern: pattern}
	if negated {
		sm.Op = expr.NotLike
	}
	if p.atKeyword("ESCAPE") {
		p.advance()
		esc, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		sm.Escape = esc
	}
	return sm, nil
}

func (p *parser) parseIn(left expr.Node, negated bool) (expr.Node, error) {
	p.advance() // IN
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	var items []expr.Node
	for !p.at(RPAREN) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, e)
		if p.at(COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &expr.In{Not: negated, Expr: left, Items: items}, nil
}

func (p *parser) parseIs(left expr.Node) (expr.Node, error) {
	p.advance() // IS
	not := false
	if p.atOperator("NOT") {
		p.advance()
		not = true
	}
	switch {
	case p.atKeyword("NULL"):
		p.advance()
		return &expr.Is{Not: not, Expr: left, Kind: expr.IsNull}, nil
	case p.atKeyword("MISSING"):
		p.advance()
		return &expr.Is{Not: not, Expr: left, Kind: expr.IsMissing}, nil
	}
	ty, ok := p.parseTypeName()
	if !ok {
		return nil, p.errorf(perr.ParseExpectedTypeName, "expected NULL, MISSING, or a type name after IS")
	}
	return &expr.Is{Not: not, Expr: left, Kind: expr.IsType, Of: ty}, nil
}

func (p *parser) parseAdditive() (expr.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.atOperator("+") || p.atOperator("-") {
		op := expr.AddOp
		if p.cur().Keyword == "-" {
			op = expr.SubOp
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &expr.Arithmetic{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (expr.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(STAR) || p.atOperator("/") || p.atOperator("%") {
		var op expr.ArithOp
		switch {
		case p.at(STAR):
			op = expr.MulOp
		case p.atOperator("/"):
			op = expr.DivOp
		default:
			op = expr.ModOp
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &expr.Arithmetic{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (expr.Node, error) {
	if p.atOperator("-") {
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &expr.Negate{Expr: e}, nil
	}
	if p.atOperator("+") {
		p.advance()
		return p.parseUnary()
	}
	return p.parseConcat()
}

func (p *parser) parseConcat() (expr.Node, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for p.atOperator("||") {
		p.advance()
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		left = &expr.Arithmetic{Op: expr.ConcatOp, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parsePostfix() (expr.Node, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	var steps []expr.Step
	for {
		switch {
		case p.at(DOT):
			p.advance()
			if p.at(STAR) {
				p.advance()
				steps = append(steps, expr.Step{Kind: expr.WildcardStep})
				continue
			}
			if p.at(DOT) {
				return nil, p.errorf(perr.ParseInvalidPathComponent, "consecutive dots in path expression")
			}
			name, err := p.expectIdentFor(perr.ParseInvalidPathComponent)
			if err != nil {
				return nil, err
			}
			steps = append(steps, expr.Step{Kind: expr.DotStep, Field: name})
		case p.at(LBRACKET):
			p.advance()
			if p.at(STAR) {
				p.advance()
				if _, err := p.expect(RBRACKET); err != nil {
					return nil, err
				}
				steps = append(steps, expr.Step{Kind: expr.WildcardStep})
				continue
			}
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACKET); err != nil {
				return nil, err
			}
			steps = append(steps, expr.Step{Kind: expr.IndexStep, Index: idx})
		default:
			if len(steps) == 0 {
				return base, nil
			}
			return &expr.Path{Root: base, Steps: steps}, nil
		}
	}
}

// ---- atoms ----

func (p *parser) parseAtom() (expr.Node, error) {
	tok := p.cur()
	switch tok.Type {
	case LITERAL:
		p.advance()
		return literalNode(tok), nil
	case IDENT:
		p.advance()
		if p.at(LPAREN) {
			return p.parseCallArgs(tok.Text)
		}
		return expr.Ident{Name: tok.Text}, nil
	case QUOTED_IDENT:
		p.advance()
		return expr.Ident{Name: tok.Text, Quoted: true}, nil
	case AT:
		p.advance()
		name, err := p.expectIdentFor(perr.ParseMissingIdentAfterAt)
		if err != nil {
			return nil, err
		}
		return expr.Ident{Name: name, AtPrefix: true}, nil
	case LPAREN:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case LBRACKET:
		return p.parseListLit()
	case LBRACE:
		return p.parseStructLit()
	case KEYWORD:
		switch tok.Keyword {
		case "CAST":
			return p.parseCast()
		case "CASE":
			return p.parseCase()
		case "SUBSTRING":
			return p.parseSubstring()
		case "TRIM":
			return p.parseTrim()
		case "NULL":
			p.advance()
			return expr.Null{Of: ion.NullType}, nil
		case "MISSING":
			p.advance()
			return expr.Missing{}, nil
		}
	}
	return nil, p.errorf(perr.ParseExpectedExpression, fmt.Sprintf("expected an expression, found %s", tok.Type))
}

func literalNode(tok Token) expr.Node {
	switch tok.Lit {
	case LitInt:
		return expr.Int(tok.Value.(ion.Int))
	case LitDecimal:
		return expr.Decimal{V: tok.Value.(ion.Decimal).V}
	case LitString:
		return expr.Str(tok.Text)
	case LitBool:
		return expr.Bool(tok.Value.(ion.Bool))
	case LitIon:
		return nodeFromDatum(tok.Value)
	}
	return expr.Missing{}
}

// nodeFromDatum converts a document-model value parsed out of a
// backtick-quoted embedded literal into the AST literal node with
// the matching runtime type, so e.g. a backtick timestamp becomes an
// expr.TimestampLit rather than its source text.
func nodeFromDatum(d ion.Datum) expr.Node {
	if d.Type() == ion.MissingType {
		return expr.Missing{}
	}
	switch v := d.(type) {
	case ion.Null:
		return expr.Null{Of: v.DeclaredType()}
	case ion.Bool:
		return expr.Bool(v)
	case ion.Int:
		return expr.Int(v)
	case ion.Float:
		return expr.Float(v)
	case ion.Decimal:
		return expr.Decimal{V: v.V}
	case ion.Timestamp:
		return expr.TimestampLit{V: v.V}
	case ion.String:
		return expr.Str(v)
	case ion.Symbol:
		return expr.Str(v)
	case ion.Blob:
		return expr.Blob(v)
	case ion.Clob:
		return expr.Clob(v)
	case ion.List:
		return &expr.ListLit{Items: nodesFromDatums(v.Items())}
	case ion.Sexp:
		return &expr.SexpLit{Items: nodesFromDatums(v.Items())}
	case ion.Bag:
		return &expr.BagLit{Items: nodesFromDatums(v.Items())}
	case ion.Struct:
		fields := make([]expr.StructField, 0, len(v.Fields()))
		for _, f := range v.Fields() {
			fields = append(fields, expr.StructField{Label: f.Label, Value: nodeFromDatum(f.Value)})
		}
		return &expr.StructLit{Fields: fields}
	}
	return expr.Missing{}
}

func nodesFromDatums(items []ion.Datum) []expr.Node {
	nodes := make([]expr.Node, len(items))
	for i, it := range items {
		nodes[i] = nodeFromDatum(it)
	}
	return nodes
}

func (p *parser) parseCallArgs(name string) (expr.Node, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	var args []expr.Node
	for !p.at(RPAREN) {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.at(COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &expr.Call{Name: name, Args: args}, nil
}

func (p *parser) parseListLit() (expr.Node, error) {
	p.advance() // [
	var items []expr.Node
	for !p.at(RBRACKET) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, e)
		if p.at(COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(RBRACKET); err != nil {
		return nil, err
	}
	return &expr.ListLit{Items: items}, nil
}

func (p *parser) parseStructLit() (expr.Node, error) {
	p.advance() // {
	var fields []expr.StructField
	for !p.at(RBRACE) {
		var label string
		switch p.cur().Type {
		case LITERAL:
			if p.cur().Lit != LitString {
				return nil, p.errorf(perr.ParseUnexpectedTerm, "struct field name must be a string or identifier")
			}
			label = p.advance().Text
		case IDENT, QUOTED_IDENT:
			label = p.advance().Text
		default:
			return nil, p.errorf(perr.ParseExpected2TokenTypes, "struct field name must be a string or identifier",
				perr.ExpectedTokenType1Of2, LITERAL.String(), perr.ExpectedTokenType2Of2, IDENT.String())
		}
		if _, err := p.expect(COLON); err != nil {
			return nil, err
		}
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fields = append(fields, expr.StructField{Label: label, Value: v})
		if p.at(COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return &expr.StructLit{Fields: fields}, nil
}

func (p *parser) parseCast() (expr.Node, error) {
	p.advance() // CAST
	if !p.at(LPAREN) {
		return nil, p.errorf(perr.ParseExpectedLeftParenAfterCast, "expected ( after CAST")
	}
	p.advance()
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("AS") {
		return nil, p.errorf(perr.ParseExpectedKeyword, "expected AS in CAST", perr.Keyword, "AS")
	}
	p.advance()
	nameTok := p.cur()
	ty, ok := p.parseTypeName()
	if !ok {
		return nil, p.errorf(perr.ParseExpectedTypeName, "expected a type name in CAST")
	}
	var params []int
	if p.at(LPAREN) {
		p.advance()
		for !p.at(RPAREN) {
			tok := p.cur()
			if tok.Type != LITERAL || tok.Lit != LitInt || tok.Value.(ion.Int) < 0 {
				return nil, p.errorf(perr.ParseInvalidTypeParam, "type parameters must be non-negative integer literals")
			}
			p.advance()
			params = append(params, int(tok.Value.(ion.Int)))
			if p.at(COMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
	}
	if err := castArity(strings.ToUpper(nameTok.Text), len(params)); err != nil {
		return nil, p.wrapErr(err)
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &expr.Cast{Expr: e, To: ty, Params: params}, nil
}

func (p *parser) wrapErr(err error) error {
	if pe, ok := err.(*perr.Error); ok {
		if pe.Properties == nil {
			pe.Properties = map[perr.PropKey]any{}
		}
		pe.Properties[perr.LineNumber] = p.cur().Pos.Line
		pe.Properties[perr.ColumnNumber] = p.cur().Pos.Column
		pe.Properties[perr.TokenType] = p.cur().Type.String()
		pe.Properties[perr.TokenValue] = p.cur().Value
	}
	return err
}

// castArity enforces the expected-parameter arity per target type,
// e.g. VARCHAR accepts exactly one non-negative integer, INTEGER none.
func castArity(name string, n int) error {
	var want int
	switch name {
	case "VARCHAR":
		want = 1
	default:
		want = 0
	}
	if n != want {
		return perr.New(perr.ParseCastArity, "wrong number of CAST type parameters",
			perr.ExpectedArityMin, want, perr.ExpectedArityMax, want)
	}
	return nil
}

func (p *parser) parseTypeName() (ion.Type, bool) {
	if p.cur().Type != KEYWORD && p.cur().Type != IDENT {
		return 0, false
	}
	upper := strings.ToUpper(p.cur().Text)
	name, ok := typeNames.get(upper)
	if !ok {
		return 0, false
	}
	p.advance()
	switch name {
	case "BOOL", "BOOLEAN":
		return ion.BoolType, true
	case "INT", "INTEGER":
		return ion.IntType, true
	case "FLOAT", "DOUBLE":
		return ion.FloatType, true
	case "DECIMAL", "NUMERIC":
		return ion.DecimalType, true
	case "TIMESTAMP":
		return ion.TimestampType, true
	case "SYMBOL":
		return ion.SymbolType, true
	case "STRING", "VARCHAR":
		return ion.StringType, true
	case "CLOB":
		return ion.ClobType, true
	case "BLOB":
		return ion.BlobType, true
	case "LIST":
		return ion.ListType, true
	case "SEXP":
		return ion.SexpType, true
	case "BAG":
		return ion.BagType, true
	case "STRUCT":
		return ion.StructType, true
	}
	return 0, false
}

func (p *parser) parseCase() (expr.Node, error) {
	p.advance() // CASE
	c := &expr.Case{}
	if !p.atKeyword("WHEN") {
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Value = v
	}
	if !p.atKeyword("WHEN") {
		return nil, p.errorf(perr.ParseExpectedWhenClause, "expected WHEN in CASE expression")
	}
	for p.atKeyword("WHEN") {
		p.advance()
		when, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.atKeyword("THEN") {
			return nil, p.errorf(perr.ParseExpectedKeyword, "expected THEN in CASE expression", perr.Keyword, "THEN")
		}
		p.advance()
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Limbs = append(c.Limbs, expr.CaseLimb{When: when, Then: then})
	}
	if p.atKeyword("ELSE") {
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Else = e
	}
	if !p.atKeyword("END") {
		return nil, p.errorf(perr.ParseExpectedKeyword, "expected END in CASE expression", perr.Keyword, "END")
	}
	p.advance()
	return c, nil
}

// parseSubstring handles both "SUBSTRING(e FROM n [FOR m])" and
// "SUBSTRING(e, n[, m])", desugaring each to a plain Call so the
// evaluator has a single shape to deal with.
func (p *parser) parseSubstring() (expr.Node, error) {
	p.advance() // SUBSTRING
	if !p.at(LPAREN) {
		return nil, p.errorf(perr.ParseExpectedLeftParenBuiltinCall, "expected ( after SUBSTRING")
	}
	p.advance()
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	args := []expr.Node{e}
	if p.atKeyword("FROM") {
		p.advance()
		n, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, n)
		if p.atKeyword("FOR") {
			p.advance()
			m, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, m)
		}
	} else {
		for p.at(COMMA) {
			p.advance()
			a, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if len(args) > 3 {
				return nil, p.errorf(perr.ParseExpectedArgumentDelimiter, "too many arguments to SUBSTRING")
			}
		}
	}
	if !p.at(RPAREN) {
		return nil, p.errorf(perr.ParseExpectedRightParenBuiltinCall, "expected ) to close SUBSTRING")
	}
	p.advance()
	return &expr.Call{Name: "SUBSTRING", Args: args}, nil
}

// parseTrim handles "TRIM([[LEADING|TRAILING|BOTH] [chars] FROM] s)",
// desugaring to Call("TRIM", [side, chars, s]) with side always present
// (defaulting to BOTH) so the evaluator needn't re-derive it.
func (p *parser) parseTrim() (expr.Node, error) {
	p.advance() // TRIM
	if !p.at(LPAREN) {
		return nil, p.errorf(perr.ParseExpectedLeftParenBuiltinCall, "expected ( after TRIM")
	}
	p.advance()
	side := "BOTH"
	switch {
	case p.atKeyword("LEADING"):
		p.advance()
		side = "LEADING"
	case p.atKeyword("TRAILING"):
		p.advance()
		side = "TRAILING"
	case p.atKeyword("BOTH"):
		p.advance()
		side = "BOTH"
	}
	var chars expr.Node = expr.Str(" ")
	var target expr.Node
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.atKeyword("FROM") {
		p.advance()
		chars = first
		target, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	} else {
		target = first
	}
	if !p.at(RPAREN) {
		return nil, p.errorf(perr.ParseExpectedRightParenBuiltinCall, "expected ) to close TRIM")
	}
	p.advance()
	return &expr.Call{Name: "TRIM", Args: []expr.Node{expr.Str(side), chars, target}}, nil
}
