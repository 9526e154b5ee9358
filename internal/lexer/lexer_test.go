package lexer

import (
	"testing"

	"github.com/tofu-tigre/clox/internal/token"
)

func collect(input string) []token.Token {
	l := New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func TestSingleAndDoubleCharTokens(t *testing.T) {
	toks := collect("( ) { } , . - + ; * / ! != = == < <= > >=")
	want := []token.Type{
		token.LEFT_PAREN, token.RIGHT_PAREN, token.LEFT_BRACE, token.RIGHT_BRACE,
		token.COMMA, token.DOT, token.MINUS, token.PLUS, token.SEMICOLON,
		token.STAR, token.SLASH, token.BANG, token.BANG_EQUAL, token.EQUAL,
		token.EQUAL_EQUAL, token.LESS, token.LESS_EQUAL, token.GREATER,
		token.GREATER_EQUAL, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, tok := range toks {
		if tok.Type != want[i] {
			t.Errorf("token %d: got %s, want %s", i, tok.Type, want[i])
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := collect("var x = foo and bar or baz")
	wantTypes := []token.Type{
		token.VAR, token.IDENTIFIER, token.EQUAL, token.IDENTIFIER,
		token.AND, token.IDENTIFIER, token.OR, token.IDENTIFIER, token.EOF,
	}
	for i, tok := range toks {
		if tok.Type != wantTypes[i] {
			t.Fatalf("token %d: got %s, want %s", i, tok.Type, wantTypes[i])
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []string{"123", "3.14", "0", "0.5"}
	for _, in := range tests {
		toks := collect(in)
		if toks[0].Type != token.NUMBER || toks[0].Lexeme != in {
			t.Errorf("scanning %q: got %+v", in, toks[0])
		}
	}
}

func TestStringLiteral(t *testing.T) {
	toks := collect(`"hello world"`)
	if toks[0].Type != token.STRING || toks[0].Lexeme != "hello world" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestUnterminatedString(t *testing.T) {
	toks := collect(`"unterminated`)
	if toks[0].Type != token.ERROR {
		t.Fatalf("expected ERROR token, got %+v", toks[0])
	}
}

func TestLineCommentsAreSkipped(t *testing.T) {
	toks := collect("1 // this is a comment\n2")
	if toks[0].Lexeme != "1" || toks[1].Lexeme != "2" {
		t.Fatalf("comment not skipped correctly: %+v", toks)
	}
	if toks[1].Line != 2 {
		t.Fatalf("expected line 2 after newline, got %d", toks[1].Line)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	toks := collect("@")
	if toks[0].Type != token.ERROR {
		t.Fatalf("expected ERROR token for '@', got %+v", toks[0])
	}
}
