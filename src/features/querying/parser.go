package querying

import (
	"strconv"
	"strings"

	"github.com/sunclx/seiri/src/music"
)

// Parse turns a bang expression into its AST. Empty input matches all
// tracks.
func Parse(expr string) (Expr, error) {
	return parseAt(expr, 0)
}

func parseAt(input string, base int) (Expr, error) {
	toks, err := lex(input, base)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return MatchAll{}, nil
	}
	p := &parser{toks: toks, end: base + len(input)}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return expr, nil
}

type parser struct {
	toks []token
	pos  int
	end  int // absolute offset just past the input, for errors at EOF
}

// parseExpr parses a left-associative chain of terms joined by & and |.
func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.pos < len(p.toks) {
		tok := p.toks[p.pos]
		var op LogicalOp
		switch tok.kind {
		case tokAnd:
			op = OpAnd
		case tokOr:
			op = OpOr
		default:
			return nil, parseErr(tok.offset, ErrDanglingCombinator, "expected combinator between terms")
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (Expr, error) {
	if p.pos >= len(p.toks) {
		return nil, parseErr(p.end, ErrDanglingCombinator, "expression ends with a combinator")
	}
	tok := p.toks[p.pos]
	switch tok.kind {
	case tokAnd, tokOr:
		return nil, parseErr(tok.offset, ErrDanglingCombinator, "combinator without a left-hand term")
	case tokText:
		p.pos++
		return &TitleContains{Text: tok.text}, nil
	case tokGroup:
		p.pos++
		inner, err := parseAt(tok.text, tok.offset)
		if err != nil {
			return nil, err
		}
		return &Group{Inner: inner}, nil
	case tokBang:
		p.pos++
		var payload *token
		if p.pos < len(p.toks) && p.toks[p.pos].kind == tokPayload {
			payload = &p.toks[p.pos]
			p.pos++
		}
		return buildLeaf(tok, payload)
	}
	return nil, parseErr(tok.offset, ErrUnknownBang, "unexpected token")
}

// buildLeaf resolves a bang tag and its optional payload into a leaf
// predicate. Tags are recognized case-insensitively; for the text-search
// pairs the all-uppercase spelling selects the exact/case-sensitive
// variant.
func buildLeaf(bang token, payload *token) (Expr, error) {
	has := payload != nil
	text := ""
	payloadOff := bang.offset
	if has {
		text = payload.text
		payloadOff = payload.offset
	}

	switch bang.text {
	case "Q":
		return textLeaf(&FullText{Text: text, Exact: true}, bang, has)
	case "AL":
		return textLeaf(&AlbumMatch{Text: text, Exact: true}, bang, has)
	case "ALA":
		return textLeaf(&AlbumArtistMatch{Text: text, Exact: true}, bang, has)
	}

	switch strings.ToLower(bang.text) {
	case "":
		if !has || text == "" {
			return MatchAll{}, nil
		}
		return nil, parseErr(bang.offset, ErrUnknownBang, "empty bang cannot take an operand")
	case "q":
		return textLeaf(&FullText{Text: text}, bang, has)
	case "al":
		return textLeaf(&AlbumMatch{Text: text}, bang, has)
	case "ala":
		return textLeaf(&AlbumArtistMatch{Text: text}, bang, has)
	case "f":
		if !has {
			return nil, parseErr(bang.offset, ErrInvalidOperand, "format bang requires an operand")
		}
		formats, ok := music.ExpandFormatAlias(text)
		if !ok {
			return nil, parseErr(payloadOff, ErrInvalidOperand, "unknown format %q", text)
		}
		return &FormatIs{Formats: formats}, nil
	case "brlt":
		return intLeaf(bang, payload, func(n int) Expr { return &BitrateCompare{Less: true, Value: n} })
	case "brgt":
		return intLeaf(bang, payload, func(n int) Expr { return &BitrateCompare{Value: n} })
	case "cwlt":
		return intLeaf(bang, payload, func(n int) Expr { return &CoverDimCompare{Width: true, Less: true, Value: n} })
	case "cwgt":
		return intLeaf(bang, payload, func(n int) Expr { return &CoverDimCompare{Width: true, Value: n} })
	case "chlt":
		return intLeaf(bang, payload, func(n int) Expr { return &CoverDimCompare{Less: true, Value: n} })
	case "chgt":
		return intLeaf(bang, payload, func(n int) Expr { return &CoverDimCompare{Value: n} })
	case "c":
		return boolLeaf(FieldHasCover, payload)
	case "mb":
		return boolLeaf(FieldHasMusicBrainzID, payload)
	case "dup":
		return boolLeaf(FieldDuplicate, payload)
	}
	return nil, parseErr(bang.offset, ErrUnknownBang, "unknown bang !%s", bang.text)
}

func textLeaf(e Expr, bang token, hasPayload bool) (Expr, error) {
	if !hasPayload {
		return nil, parseErr(bang.offset, ErrInvalidOperand, "text bang !%s requires an operand", bang.text)
	}
	return e, nil
}

func intLeaf(bang token, payload *token, build func(int) Expr) (Expr, error) {
	if payload == nil {
		return nil, parseErr(bang.offset, ErrInvalidOperand, "numeric bang !%s requires an operand", bang.text)
	}
	n, err := strconv.Atoi(strings.TrimSpace(payload.text))
	if err != nil {
		return nil, parseErr(payload.offset, ErrInvalidOperand, "expected an integer, got %q", payload.text)
	}
	return build(n), nil
}

// boolLeaf parses a boolean payload; a missing payload is the "true-tick"
// shorthand, equivalent to {true}.
func boolLeaf(field BoolField, payload *token) (Expr, error) {
	if payload == nil {
		return &BoolPred{Field: field, Value: true}, nil
	}
	switch strings.ToLower(strings.TrimSpace(payload.text)) {
	case "true":
		return &BoolPred{Field: field, Value: true}, nil
	case "false":
		return &BoolPred{Field: field, Value: false}, nil
	}
	return nil, parseErr(payload.offset, ErrInvalidOperand, "expected true or false, got %q", payload.text)
}
