// Package parser splits SQL migration files into statements and extracts the
// directive block written as comments at the top of each file.
//
// Statement boundaries are found with a participle lexer rather than naive
// semicolon splitting, so semicolons inside string literals, quoted
// identifiers, comments and dollar-quoted function bodies are left alone.
//
// Directives are line comments of the form "-- key: value" at the very top of
// the first statement. Two directives are recognized by default:
//
//	-- transactional: false
//	-- depends: 0001-create-users 0002-create-orders
//
// Any other leading comment lines form the migration's description.
//
// Basic usage:
//
//	res, err := parser.Parse(sql)
//	if err != nil {
//		return err
//	}
//
//	tx, err := res.Directives.Transactional()
//	if err != nil {
//		return err
//	}
//
//	for _, stmt := range res.Statements {
//		fmt.Println(stmt)
//	}
package parser
