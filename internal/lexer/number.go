package lexer

import "strconv"

// parseFloat converts a validated number lexeme to a float64. spec.md §8
// requires this conversion to be lossless for every lexeme matching the
// grammar `sign? digits ('.' digits)? ([eE] sign? digits)?`; strconv's
// IEEE-754 parser satisfies that directly.
func parseFloat(lexeme string) (float64, error) {
	return strconv.ParseFloat(lexeme, 64)
}
