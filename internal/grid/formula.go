package grid

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel values rendered in-cell instead of raising errors.
const (
	ErrorToken    = "#ERROR"
	NumErrorToken = "#Num!"
)

var (
	cellRefPattern = regexp.MustCompile(`[A-Z][0-9]+`)
	safeExpression = regexp.MustCompile(`^[0-9+\-*/().\s]+$`)
	numericScrub   = regexp.MustCompile(`[^0-9.\-]+`)
)

// Evaluate resolves a formula against the current grid contents. Input that
// does not start with "=" is returned unchanged. Cell references are
// substituted with the referenced cell's numeric value (0 when absent or
// unparseable), then the arithmetic expression is evaluated with standard
// precedence. Any character surviving substitution outside the arithmetic
// charset yields ErrorToken — this is the injection guard.
//
// Evaluation is one-shot: results are cached in the cell and are NOT
// recomputed when referenced cells change later. That is deliberate; there
// is no dependency graph.
func Evaluate(formula string, data Data) string {
	if !strings.HasPrefix(formula, "=") {
		return formula
	}

	expression := strings.ToUpper(formula[1:])
	expression = cellRefPattern.ReplaceAllStringFunc(expression, func(ref string) string {
		cell, ok := data[ref]
		if !ok {
			return "0"
		}
		val, err := strconv.ParseFloat(numericScrub.ReplaceAllString(cell.Value, ""), 64)
		if err != nil {
			return "0"
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	})

	if !safeExpression.MatchString(expression) {
		return ErrorToken
	}

	result, err := evalArithmetic(expression)
	if err != nil {
		return ErrorToken
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return NumErrorToken
	}
	return strconv.FormatFloat(result, 'f', -1, 64)
}

// evalArithmetic is a small recursive-descent evaluator over the sanitized
// charset: numbers, + - * / ( ) and whitespace.
type exprParser struct {
	input string
	pos   int
}

func evalArithmetic(input string) (float64, error) {
	p := &exprParser{input: input}
	value, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("unexpected %q at %d", p.input[p.pos], p.pos)
	}
	return value, nil
}

func (p *exprParser) parseSum() (float64, error) {
	left, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return left, nil
		}
		switch p.input[p.pos] {
		case '+':
			p.pos++
			right, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseProduct() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return left, nil
		}
		switch p.input[p.pos] {
		case '*':
			p.pos++
			right, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			left *= right
		case '/':
			p.pos++
			right, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseFactor() (float64, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("unexpected end of expression")
	}
	switch p.input[p.pos] {
	case '-':
		p.pos++
		value, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -value, nil
	case '(':
		p.pos++
		value, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return value, nil
	}
	return p.parseNumber()
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && (p.input[p.pos] == '.' || (p.input[p.pos] >= '0' && p.input[p.pos] <= '9')) {
		p.pos++
	}
	if start == p.pos {
		return 0, fmt.Errorf("expected number at %d", start)
	}
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", p.input[start:p.pos], err)
	}
	return value, nil
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}
