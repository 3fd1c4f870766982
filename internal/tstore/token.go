package tstore

// Kind enumerates the lexical token kinds the external lexer produces and
// the parser consumes. The set covers the C99 grammar spec.md's parser
// design (§4.G) is written against.
type Kind uint16

const (
	EOF Kind = iota
	ILLEGAL

	IDENT
	INT_LIT
	FLOAT_LIT
	CHAR_LIT
	STRING_LIT

	// Punctuation / operators
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	SEMI
	COMMA
	DOT
	ARROW
	QUESTION
	COLON
	ELLIPSIS

	ASSIGN
	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	SLASH_ASSIGN
	PERCENT_ASSIGN

	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	INCR
	DECR

	AMP
	PIPE
	CARET
	TILDE
	SHL
	SHR

	NOT
	ANDAND
	OROR

	EQ
	NEQ
	LT
	GT
	LE
	GE

	// Keywords: storage class
	KW_TYPEDEF
	KW_EXTERN
	KW_STATIC
	KW_AUTO
	KW_REGISTER

	// Keywords: type qualifiers/specifiers
	KW_CONST
	KW_VOLATILE
	KW_RESTRICT
	KW_INLINE
	KW_VOID
	KW_CHAR
	KW_SHORT
	KW_INT
	KW_LONG
	KW_FLOAT
	KW_DOUBLE
	KW_SIGNED
	KW_UNSIGNED
	KW_BOOL
	KW_COMPLEX
	KW_IMAGINARY
	KW_STRUCT
	KW_UNION
	KW_ENUM

	// Keywords: statements
	KW_IF
	KW_ELSE
	KW_WHILE
	KW_FOR
	KW_DO
	KW_RETURN
	KW_BREAK
	KW_CONTINUE
	KW_GOTO
	KW_SWITCH
	KW_CASE
	KW_DEFAULT
	KW_SIZEOF
)

// Keywords maps the reserved-word spelling to its Kind, used by the
// reference lexer (internal/lexer) to distinguish identifiers from keywords.
var Keywords = map[string]Kind{
	"typedef": KW_TYPEDEF, "extern": KW_EXTERN, "static": KW_STATIC, "auto": KW_AUTO, "register": KW_REGISTER,
	"const": KW_CONST, "volatile": KW_VOLATILE, "restrict": KW_RESTRICT, "inline": KW_INLINE,
	"void": KW_VOID, "char": KW_CHAR, "short": KW_SHORT, "int": KW_INT, "long": KW_LONG,
	"float": KW_FLOAT, "double": KW_DOUBLE, "signed": KW_SIGNED, "unsigned": KW_UNSIGNED, "_Bool": KW_BOOL,
	"_Complex": KW_COMPLEX, "_Imaginary": KW_IMAGINARY,
	"struct": KW_STRUCT, "union": KW_UNION, "enum": KW_ENUM,
	"if": KW_IF, "else": KW_ELSE, "while": KW_WHILE, "for": KW_FOR, "do": KW_DO,
	"return": KW_RETURN, "break": KW_BREAK, "continue": KW_CONTINUE, "goto": KW_GOTO,
	"switch": KW_SWITCH, "case": KW_CASE, "default": KW_DEFAULT, "sizeof": KW_SIZEOF,
}

// Token is the fixed-size lexical record: {kind, source-string position,
// file-name position, source line}, exactly as spec.md §3/§6.
type Token struct {
	Kind       Kind
	SourcePos  uint16 // SSTORE position of the token's source text
	FilePos    uint16 // SSTORE position of the originating file name
	SourceLine uint16
}
