package cdl

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser consumes the flat token slice produced by the Lexer and builds a
// ParseResult.
//
// Grammar:
//
//	program   := SYSTEM '[' pg ']' ':' form_list ('|' tail)?
//	pg        := POINT_GROUP | IDENTIFIER
//	form_list := form_or_group ('+' form_or_group)*
//	form_or_group := (IDENTIFIER ':' &('(' | '{'))? (group | form)
//	group     := '(' form_list ')' features?
//	form      := miller ('@' scale)? features?
//	miller    := '{' components '}'
//	scale     := FLOAT | INTEGER | numeric POINT_GROUP
//	features  := '[' raw until matching ']' ']'
//
// Feature blocks and the modifier tail are raw substrings of the
// preprocessed source; the parser keeps the source around and slices it by
// token offset.
type Parser struct {
	tokens []Token
	pos    int
	src    []rune

	warnings []string
}

// NewParser wraps tokens lexed from src.
func NewParser(tokens []Token, src string) *Parser {
	return &Parser{tokens: tokens, src: []rune(src)}
}

// Parse runs the whole pipeline front end: preprocess, lex, parse, and
// extract the modifier tail.
func Parse(src string) (*ParseResult, error) {
	pre, err := Preprocess(src)
	if err != nil {
		return nil, err
	}
	tokens, err := Lex(pre.Text)
	if err != nil {
		return nil, err
	}
	result, err := NewParser(tokens, pre.Text).parseProgram()
	if err != nil {
		return nil, err
	}
	result.Definitions = pre.Definitions
	result.DocComments = pre.DocComments
	return result, nil
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF, Pos: len(p.src)}
	}
	return p.tokens[p.pos]
}

// peekNext returns the token immediately after the current one.
func (p *Parser) peekNext() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: EOF, Pos: len(p.src)}
	}
	return p.tokens[p.pos+1]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise errors.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, &ParseError{
			Expected: tt.String(),
			Got:      fmt.Sprintf("%s (%q)", tok.Type, tok.Lexeme),
			Pos:      tok.Pos,
		}
	}
	return tok, nil
}

func (p *Parser) parseProgram() (*ParseResult, error) {
	sysTok := p.advance()
	if sysTok.Type != SYSTEM {
		return nil, ErrUnknownSystem
	}

	if _, err := p.expect(LBRACKET); err != nil {
		return nil, err
	}
	pgTok := p.advance()
	if pgTok.Type != POINT_GROUP && pgTok.Type != IDENTIFIER {
		return nil, &ParseError{
			Expected: "point group",
			Got:      fmt.Sprintf("%s (%q)", pgTok.Type, pgTok.Lexeme),
			Pos:      pgTok.Pos,
		}
	}
	if _, err := p.expect(RBRACKET); err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON); err != nil {
		return nil, err
	}

	result := &ParseResult{System: sysTok.Lexeme, PointGroup: pgTok.Lexeme}

	// Unknown point groups stay usable (identity orbit downstream); record
	// a warning instead of failing.
	if !contains(GroupsForSystem(result.System), result.PointGroup) {
		p.warnings = append(p.warnings,
			fmt.Sprintf("point group %q is not enumerated for system %q", result.PointGroup, result.System))
	}

	forms, err := p.parseFormList()
	if err != nil {
		return nil, err
	}
	result.Forms = forms

	switch tok := p.peek(); tok.Type {
	case PIPE:
		tail := strings.TrimSpace(string(p.src[tok.Pos+1:]))
		result.Modifier = tail
		twin, mods, phen, warns := ExtractModifiers(tail)
		result.Twin = twin
		result.Modifications = mods
		result.Phenomenon = phen
		p.warnings = append(p.warnings, warns...)
	case EOF:
	default:
		return nil, &ParseError{
			Expected: "'+', '|' or end of input",
			Got:      fmt.Sprintf("%s (%q)", tok.Type, tok.Lexeme),
			Pos:      tok.Pos,
		}
	}

	result.Warnings = p.warnings
	return result, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (p *Parser) parseFormList() ([]FormNode, error) {
	var nodes []FormNode
	for {
		node, err := p.parseFormOrGroup()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
		if p.peek().Type != PLUS {
			return nodes, nil
		}
		p.advance()
	}
}

func (p *Parser) parseFormOrGroup() (FormNode, error) {
	label := ""
	if p.peek().Type == IDENTIFIER && p.peekNext().Type == COLON {
		// A label binds only when a group or Miller brace follows.
		if after := p.peekAt(2); after.Type == LPAREN || after.Type == LBRACE {
			label = p.advance().Lexeme
			p.advance() // ':'
		}
	}

	switch p.peek().Type {
	case LPAREN:
		return p.parseGroup(label)
	case LBRACE:
		return p.parseForm(label)
	}
	tok := p.peek()
	return nil, &ParseError{
		Expected: "'(' or '{'",
		Got:      fmt.Sprintf("%s (%q)", tok.Type, tok.Lexeme),
		Pos:      tok.Pos,
	}
}

// peekAt returns the token at the given offset from the current position.
func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return Token{Type: EOF, Pos: len(p.src)}
	}
	return p.tokens[p.pos+offset]
}

func (p *Parser) parseGroup(label string) (FormNode, error) {
	p.advance() // '('
	children, err := p.parseFormList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	group := &FormGroup{Children: children, Label: label}
	if p.peek().Type == LBRACKET {
		features, err := p.parseFeatures()
		if err != nil {
			return nil, err
		}
		group.Features = features
	}
	return group, nil
}

func (p *Parser) parseForm(label string) (FormNode, error) {
	miller, err := p.parseMiller()
	if err != nil {
		return nil, err
	}
	form := &CrystalForm{Miller: miller, Scale: 1, Label: label}

	if p.peek().Type == AT {
		p.advance()
		scale, err := p.parseScale()
		if err != nil {
			return nil, err
		}
		form.Scale = scale
	}
	if p.peek().Type == LBRACKET {
		features, err := p.parseFeatures()
		if err != nil {
			return nil, err
		}
		form.Features = features
	}
	return form, nil
}

// splitComponents turns one signed integer lexeme into Miller components.
// Runs of two or more digits split digit by digit, the sign riding on the
// first; a single digit keeps its value whole. This is how {10-10} encodes
// (1, 0, -1, 0).
func splitComponents(lexeme string) []int {
	neg := strings.HasPrefix(lexeme, "-")
	digits := strings.TrimPrefix(lexeme, "-")
	if len(digits) < 2 {
		v, _ := strconv.Atoi(lexeme)
		return []int{v}
	}
	comps := make([]int, 0, len(digits))
	for i, d := range digits {
		v := int(d - '0')
		if i == 0 && neg {
			v = -v
		}
		comps = append(comps, v)
	}
	return comps
}

func (p *Parser) parseMiller() (MillerIndex, error) {
	if _, err := p.expect(LBRACE); err != nil {
		return MillerIndex{}, err
	}
	var comps []int
	for {
		tok := p.peek()
		switch tok.Type {
		case RBRACE:
			p.advance()
			switch len(comps) {
			case 3:
				return MillerIndex{H: comps[0], K: comps[1], L: comps[2]}, nil
			case 4:
				return MillerIndex{H: comps[0], K: comps[1], I: comps[2], L: comps[3], HasI: true}, nil
			default:
				return MillerIndex{}, &MillerArityError{Got: len(comps)}
			}
		case COMMA:
			p.advance()
		case INTEGER:
			comps = append(comps, splitComponents(p.advance().Lexeme)...)
		case POINT_GROUP:
			// Numeric group literals like 32 or -4 double as Miller
			// component sources inside braces.
			if _, err := strconv.Atoi(tok.Lexeme); err != nil {
				return MillerIndex{}, &ParseError{
					Expected: "Miller component",
					Got:      fmt.Sprintf("%s (%q)", tok.Type, tok.Lexeme),
					Pos:      tok.Pos,
				}
			}
			comps = append(comps, splitComponents(p.advance().Lexeme)...)
		default:
			return MillerIndex{}, &ParseError{
				Expected: "Miller component or '}'",
				Got:      fmt.Sprintf("%s (%q)", tok.Type, tok.Lexeme),
				Pos:      tok.Pos,
			}
		}
	}
}

func (p *Parser) parseScale() (float64, error) {
	tok := p.advance()
	switch tok.Type {
	case FLOAT, INTEGER, POINT_GROUP:
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil || v <= 0 {
			return 0, &ParseError{
				Expected: "positive scale",
				Got:      fmt.Sprintf("%q", tok.Lexeme),
				Pos:      tok.Pos,
			}
		}
		return v, nil
	}
	return 0, &ParseError{
		Expected: "scale value",
		Got:      fmt.Sprintf("%s (%q)", tok.Type, tok.Lexeme),
		Pos:      tok.Pos,
	}
}

// parseFeatures captures the raw substring between the current '[' and its
// matching ']' (nesting tracked by depth), then resynchronizes the token
// stream past the close bracket.
func (p *Parser) parseFeatures() (string, error) {
	open := p.peek().Pos
	depth := 0
	end := -1
	for i := open; i < len(p.src); i++ {
		switch p.src[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return "", ErrUnterminatedFeatures
	}
	for p.pos < len(p.tokens) && p.tokens[p.pos].Pos <= end {
		p.pos++
	}
	return strings.TrimSpace(string(p.src[open+1 : end])), nil
}
