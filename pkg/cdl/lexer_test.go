package cdl

import (
	"errors"
	"testing"
)

// tok is a compact expected token: type and lexeme, positions ignored.
type tok struct {
	tt  TokenType
	lex string
}

func checkTokens(t *testing.T, input string, expected []tok) {
	t.Helper()
	tokens, err := Lex(input)
	if err != nil {
		t.Fatalf("Lex(%q) error: %v", input, err)
	}
	if len(tokens) != len(expected) {
		t.Fatalf("Lex(%q): got %d tokens, want %d\n%v", input, len(tokens), len(expected), tokens)
	}
	for i, want := range expected {
		if tokens[i].Type != want.tt || tokens[i].Lexeme != want.lex {
			t.Errorf("Lex(%q)[%d] = %s %q, want %s %q",
				input, i, tokens[i].Type, tokens[i].Lexeme, want.tt, want.lex)
		}
	}
}

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []tok
	}{
		{
			name:     "Empty",
			input:    "",
			expected: []tok{{EOF, ""}},
		},
		{
			name:  "Basic Expression",
			input: "cubic[m3m]:{100}@1",
			expected: []tok{
				{SYSTEM, "cubic"},
				{LBRACKET, "["},
				{POINT_GROUP, "m3m"},
				{RBRACKET, "]"},
				{COLON, ":"},
				{LBRACE, "{"},
				{INTEGER, "100"},
				{RBRACE, "}"},
				{AT, "@"},
				{INTEGER, "1"},
				{EOF, ""},
			},
		},
		{
			name:  "System Case Folded",
			input: "CUBIC [ m3m ]",
			expected: []tok{
				{SYSTEM, "cubic"},
				{LBRACKET, "["},
				{POINT_GROUP, "m3m"},
				{RBRACKET, "]"},
				{EOF, ""},
			},
		},
		{
			name:  "Digit-Leading Point Groups",
			input: "4/mmm 622 -43m -3m 6/m",
			expected: []tok{
				{POINT_GROUP, "4/mmm"},
				{POINT_GROUP, "622"},
				{POINT_GROUP, "-43m"},
				{POINT_GROUP, "-3m"},
				{POINT_GROUP, "6/m"},
				{EOF, ""},
			},
		},
		{
			name:  "Group Literal Followed By Dot Is A Number",
			input: "32.5 4.0",
			expected: []tok{
				{FLOAT, "32.5"},
				{FLOAT, "4.0"},
				{EOF, ""},
			},
		},
		{
			name:  "Negative Miller Run",
			input: "{10-10}",
			expected: []tok{
				{LBRACE, "{"},
				{INTEGER, "10"},
				{INTEGER, "-10"},
				{RBRACE, "}"},
				{EOF, ""},
			},
		},
		{
			name:  "Numeric Group Inside Braces",
			input: "{1,-3,2}",
			expected: []tok{
				{LBRACE, "{"},
				{INTEGER, "1"},
				{COMMA, ","},
				{POINT_GROUP, "-3"},
				{COMMA, ","},
				{POINT_GROUP, "2"},
				{RBRACE, "}"},
				{EOF, ""},
			},
		},
		{
			name:  "Labels And Structure",
			input: "prism:({110}@1) + {001}",
			expected: []tok{
				{IDENTIFIER, "prism"},
				{COLON, ":"},
				{LPAREN, "("},
				{LBRACE, "{"},
				{INTEGER, "110"},
				{RBRACE, "}"},
				{RPAREN, ")"},
				{PLUS, "+"},
				{LBRACE, "{"},
				{INTEGER, "001"},
				{RBRACE, "}"},
				{EOF, ""},
			},
		},
		{
			name:  "Pipe And Tail",
			input: "| twin(spinel)",
			expected: []tok{
				{PIPE, "|"},
				{IDENTIFIER, "twin"},
				{LPAREN, "("},
				{IDENTIFIER, "spinel"},
				{RPAREN, ")"},
				{EOF, ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkTokens(t, tt.input, tt.expected)
		})
	}
}

func TestLexError(t *testing.T) {
	_, err := Lex("cubic[m3m]: *")
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected LexError, got %v", err)
	}
	if lexErr.Char != '*' {
		t.Errorf("LexError.Char = %q, want '*'", lexErr.Char)
	}
}

func TestLexPositions(t *testing.T) {
	tokens, err := Lex("cubic[m3m]")
	if err != nil {
		t.Fatal(err)
	}
	wantPos := []int{0, 5, 6, 9, 10}
	for i, want := range wantPos {
		if tokens[i].Pos != want {
			t.Errorf("token %d pos = %d, want %d", i, tokens[i].Pos, want)
		}
	}
}
