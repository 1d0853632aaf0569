package lexer

import "github.com/raymyers/tacky-cc/pkg/diag"

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIllegal

	// Literals
	TokenIdent  // main, foo, x
	TokenInt    // 42, 42u, 42l, 42ul
	TokenFloat  // 1.5, 1e10, .5
	TokenChar   // 'a'
	TokenString // "hello"

	// Keywords
	TokenInt_     // int
	TokenLong     // long
	TokenSigned   // signed
	TokenUnsigned // unsigned
	TokenDouble   // double
	TokenChar_    // char
	TokenVoid     // void
	TokenReturn   // return
	TokenIf       // if
	TokenElse     // else
	TokenDo       // do
	TokenWhile    // while
	TokenFor      // for
	TokenBreak    // break
	TokenContinue // continue
	TokenSwitch   // switch
	TokenCase     // case
	TokenDefault  // default
	TokenStatic   // static
	TokenExtern   // extern
	TokenSizeof   // sizeof

	// Operators
	TokenPlus      // +
	TokenMinus     // -
	TokenStar      // *
	TokenSlash     // /
	TokenPercent   // %
	TokenAssign    // =
	TokenEq        // ==
	TokenNe        // !=
	TokenLt        // <
	TokenLe        // <=
	TokenGt        // >
	TokenGe        // >=
	TokenAnd       // &&
	TokenOr        // ||
	TokenNot       // !
	TokenAmpersand // &
	TokenPipe      // |
	TokenCaret     // ^
	TokenTilde     // ~
	TokenShl       // <<
	TokenShr       // >>
	TokenQuestion  // ?
	TokenColon     // :

	// Compound assignment operators
	TokenPlusAssign    // +=
	TokenMinusAssign   // -=
	TokenStarAssign    // *=
	TokenSlashAssign   // /=
	TokenPercentAssign // %=
	TokenAndAssign     // &=
	TokenOrAssign      // |=
	TokenXorAssign     // ^=
	TokenShlAssign     // <<=
	TokenShrAssign     // >>=

	// Increment/decrement
	TokenIncrement // ++
	TokenDecrement // --

	// Delimiters
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenSemicolon // ;
	TokenComma     // ,
)

var tokenNames = map[TokenType]string{
	TokenEOF:           "EOF",
	TokenIllegal:       "ILLEGAL",
	TokenIdent:         "IDENT",
	TokenInt:           "INT",
	TokenFloat:         "FLOAT",
	TokenChar:          "CHAR",
	TokenString:        "STRING",
	TokenInt_:          "int",
	TokenLong:          "long",
	TokenSigned:        "signed",
	TokenUnsigned:      "unsigned",
	TokenDouble:        "double",
	TokenChar_:         "char",
	TokenVoid:          "void",
	TokenReturn:        "return",
	TokenIf:            "if",
	TokenElse:          "else",
	TokenDo:            "do",
	TokenWhile:         "while",
	TokenFor:           "for",
	TokenBreak:         "break",
	TokenContinue:      "continue",
	TokenSwitch:        "switch",
	TokenCase:          "case",
	TokenDefault:       "default",
	TokenStatic:        "static",
	TokenExtern:        "extern",
	TokenSizeof:        "sizeof",
	TokenPlus:          "+",
	TokenMinus:         "-",
	TokenStar:          "*",
	TokenSlash:         "/",
	TokenPercent:       "%",
	TokenAssign:        "=",
	TokenEq:            "==",
	TokenNe:            "!=",
	TokenLt:            "<",
	TokenLe:            "<=",
	TokenGt:            ">",
	TokenGe:            ">=",
	TokenAnd:           "&&",
	TokenOr:            "||",
	TokenNot:           "!",
	TokenAmpersand:     "&",
	TokenPipe:          "|",
	TokenCaret:         "^",
	TokenTilde:         "~",
	TokenShl:           "<<",
	TokenShr:           ">>",
	TokenQuestion:      "?",
	TokenColon:         ":",
	TokenPlusAssign:    "+=",
	TokenMinusAssign:   "-=",
	TokenStarAssign:    "*=",
	TokenSlashAssign:   "/=",
	TokenPercentAssign: "%=",
	TokenAndAssign:     "&=",
	TokenOrAssign:      "|=",
	TokenXorAssign:     "^=",
	TokenShlAssign:     "<<=",
	TokenShrAssign:     ">>=",
	TokenIncrement:     "++",
	TokenDecrement:     "--",
	TokenLParen:        "(",
	TokenRParen:        ")",
	TokenLBrace:        "{",
	TokenRBrace:        "}",
	TokenLBracket:      "[",
	TokenRBracket:      "]",
	TokenSemicolon:     ";",
	TokenComma:         ",",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsTypeKeyword reports whether the token can start a type specifier.
func (t TokenType) IsTypeKeyword() bool {
	switch t {
	case TokenInt_, TokenLong, TokenSigned, TokenUnsigned, TokenDouble, TokenChar_, TokenVoid:
		return true
	}
	return false
}

// IsSpecifier reports whether the token can appear in declaration specifiers.
func (t TokenType) IsSpecifier() bool {
	return t.IsTypeKeyword() || t == TokenStatic || t == TokenExtern
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Span    diag.Span
}

// keywords maps keyword strings to token types
var keywords = map[string]TokenType{
	"int":      TokenInt_,
	"long":     TokenLong,
	"signed":   TokenSigned,
	"unsigned": TokenUnsigned,
	"double":   TokenDouble,
	"char":     TokenChar_,
	"void":     TokenVoid,
	"return":   TokenReturn,
	"if":       TokenIf,
	"else":     TokenElse,
	"do":       TokenDo,
	"while":    TokenWhile,
	"for":      TokenFor,
	"break":    TokenBreak,
	"continue": TokenContinue,
	"switch":   TokenSwitch,
	"case":     TokenCase,
	"default":  TokenDefault,
	"static":   TokenStatic,
	"extern":   TokenExtern,
	"sizeof":   TokenSizeof,
}

// LookupIdent returns the token type for an identifier (keyword or IDENT)
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenIdent
}
