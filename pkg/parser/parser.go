package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

var (
	// sqlLexer tokenizes just enough SQL to find statement boundaries. Anything
	// that may legally contain a semicolon (string literals, quoted identifiers,
	// comments and dollar-quoted bodies) is lexed as a single token.
	sqlLexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "Comment", Pattern: `--[^\r\n]*`},
			{Name: "MultilineComment", Pattern: `/\*[^*]*\*+([^/*][^*]*\*+)*/`},
			{Name: "UnclosedComment", Pattern: `/\*[\s\S]*`},
			{Name: "String", Pattern: `'([^'\\]|\\.|'')*'`},
			{Name: "QuotedIdent", Pattern: `"([^"\\]|\\.|"")*"`},
			{Name: "BacktickIdent", Pattern: "`([^`\\\\]|\\\\.)*`"},
			{Name: "DollarOpen", Pattern: `\$([A-Za-z_][A-Za-z0-9_]*|)\$`, Action: lexer.Push("Dollar")},
			{Name: "Terminator", Pattern: `;`},
			{Name: "Whitespace", Pattern: `\s+`},
			{Name: "Ident", Pattern: `[\pL\pN_][\pL\pN_$]*`},
			{Name: "Word", Pattern: "[^\\s;'\"`$/\\pL\\pN_-]+"},
			{Name: "Punct", Pattern: "[^\\s'\"`]"},
		},
		"Dollar": {
			{Name: "DollarClose", Pattern: `\$\1\$`, Action: lexer.Pop()},
			{Name: "DollarBody", Pattern: `[^$]+|\$`},
		},
	})

	symbols = sqlLexer.Symbols()

	tokComment         = symbols["Comment"]
	tokWhitespace      = symbols["Whitespace"]
	tokTerminator      = symbols["Terminator"]
	tokUnclosedComment = symbols["UnclosedComment"]
	tokDollarOpen      = symbols["DollarOpen"]
	tokDollarClose     = symbols["DollarClose"]

	defaultParser = New()
)

type (
	// Result is the outcome of parsing a single migration file.
	Result struct {
		// Directives holds the key/value pairs found in the leading comment block.
		Directives Directives

		// Description is the free text of the leading comment block, with the
		// comment markers removed.
		Description string

		// Statements contains every non-empty statement in file order. The first
		// statement has the leading comment block stripped.
		Statements []string
	}

	// Parser splits SQL files into statements and extracts the directive block.
	Parser struct {
		names map[string]struct{}
	}

	// Option configures a Parser.
	Option func(*Parser)
)

// WithDirectives sets the directive names the parser recognizes. Names are
// case-sensitive. Comment lines of the form "-- key: value" whose key is not
// in this set are treated as part of the description.
func WithDirectives(names ...string) Option {
	return func(p *Parser) {
		p.names = make(map[string]struct{}, len(names))
		for _, n := range names {
			p.names[n] = struct{}{}
		}
	}
}

// New returns a Parser recognizing the transactional and depends directives
// unless overridden with WithDirectives.
func New(opts ...Option) *Parser {
	p := &Parser{}
	WithDirectives(DirectiveTransactional, DirectiveDepends)(p)

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse parses sql with the default parser.
//
// Example usage:
//
//	res, err := parser.Parse(`-- Create the users table
//	-- depends: 0001-init
//	-- transactional: false
//	CREATE TABLE users (id INT);
//	CREATE INDEX users_id ON users (id);`)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println(res.Description)            // Create the users table
//	fmt.Println(res.Directives.Depends())   // [0001-init]
//	fmt.Println(len(res.Statements))        // 2
func Parse(sql string) (*Result, error) {
	return defaultParser.Parse(sql)
}

// Parse splits sql into statements and extracts the directive block from the
// first one. Empty or whitespace-only input yields an empty Result.
func (p *Parser) Parse(sql string) (*Result, error) {
	res := &Result{Directives: Directives{}}
	if strings.TrimSpace(sql) == "" {
		return res, nil
	}

	stmts, err := SplitStatements(sql)
	if err != nil {
		return nil, err
	}

	if len(stmts) > 0 {
		res.Directives, res.Description, stmts[0] = p.ParseDirectives(stmts[0])
	}

	for _, s := range stmts {
		if strings.TrimSpace(s) != "" {
			res.Statements = append(res.Statements, s)
		}
	}

	return res, nil
}

// SplitStatements splits sql into individual statements. Semicolons inside
// string literals, quoted identifiers, comments and dollar-quoted bodies do not
// end a statement. Whitespace and line comments following a terminator belong
// to the statement they follow. Each statement is returned trimmed, including
// its terminating semicolon.
//
// Unterminated strings, quoted identifiers, block comments and dollar-quoted
// bodies are errors. A "$" inside an identifier (a$b) never opens a
// dollar-quoted body.
func SplitStatements(sql string) ([]string, error) {
	lex, err := sqlLexer.LexString("", sql)
	if err != nil {
		return nil, errors.Wrap(err, "failed to lex SQL")
	}

	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, errors.Wrap(err, "failed to lex SQL")
	}

	var (
		stmts      []string
		buf        strings.Builder
		terminated bool
		openDollar *lexer.Token
	)

	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			stmts = append(stmts, s)
		}
		buf.Reset()
		terminated = false
	}

	for _, tok := range tokens {
		if tok.EOF() {
			break
		}

		switch tok.Type {
		case tokUnclosedComment:
			return nil, errors.Errorf("failed to lex SQL: unterminated comment at %s", tok.Pos)
		case tokDollarOpen:
			openDollar = &tok
		case tokDollarClose:
			openDollar = nil
		}

		if terminated && tok.Type != tokWhitespace && tok.Type != tokComment {
			flush()
		}

		buf.WriteString(tok.Value)
		if tok.Type == tokTerminator {
			terminated = true
		}
	}

	if openDollar != nil {
		return nil, errors.Errorf("failed to lex SQL: unterminated %s block at %s", openDollar.Value, openDollar.Pos)
	}

	flush()
	return stmts, nil
}
