package querying

import "strings"

type tokenKind int

const (
	tokBang tokenKind = iota
	tokPayload
	tokGroup
	tokText
	tokAnd
	tokOr
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

// lex performs the single left-to-right scan of a bang expression. base is
// the absolute offset of input within the original expression so that
// errors inside `!!{…}` payloads report absolute positions.
func lex(input string, base int) ([]token, error) {
	var toks []token
	pos := 0
	for pos < len(input) {
		c := input[pos]
		switch {
		case c == ' ' || c == '\t':
			pos++
		case c == '&':
			toks = append(toks, token{kind: tokAnd, offset: base + pos})
			pos++
		case c == '|':
			toks = append(toks, token{kind: tokOr, offset: base + pos})
			pos++
		case c == '!':
			if pos+1 < len(input) && input[pos+1] == '!' {
				tok, next, err := lexGroup(input, pos, base)
				if err != nil {
					return nil, err
				}
				toks = append(toks, tok)
				pos = next
				continue
			}
			bangStart := pos
			pos++
			tagStart := pos
			for pos < len(input) && isTagChar(input[pos]) {
				pos++
			}
			toks = append(toks, token{kind: tokBang, text: input[tagStart:pos], offset: base + bangStart})
			if pos < len(input) && input[pos] == '{' {
				tok, next, err := lexPayload(input, pos, base)
				if err != nil {
					return nil, err
				}
				toks = append(toks, tok)
				pos = next
			}
		default:
			start := pos
			for pos < len(input) && input[pos] != '&' && input[pos] != '|' {
				pos++
			}
			text := strings.TrimSpace(input[start:pos])
			if text != "" {
				toks = append(toks, token{kind: tokText, text: text, offset: base + start})
			}
		}
	}
	return toks, nil
}

func isTagChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// lexPayload consumes a `{…}` payload starting at the opening brace,
// resolving the `\}` and `\\` escapes. Any other backslash sequence is a
// parse error.
func lexPayload(input string, open, base int) (token, int, error) {
	var sb strings.Builder
	i := open + 1
	for i < len(input) {
		switch input[i] {
		case '\\':
			if i+1 >= len(input) {
				return token{}, 0, parseErr(base+len(input), ErrUnterminatedPayload, "payload not closed before end of input")
			}
			switch input[i+1] {
			case '}':
				sb.WriteByte('}')
			case '\\':
				sb.WriteByte('\\')
			default:
				return token{}, 0, parseErr(base+i, ErrInvalidEscape, "unsupported escape \\%c", input[i+1])
			}
			i += 2
		case '}':
			return token{kind: tokPayload, text: sb.String(), offset: base + open + 1}, i + 1, nil
		default:
			sb.WriteByte(input[i])
			i++
		}
	}
	return token{}, 0, parseErr(base+len(input), ErrUnterminatedPayload, "payload not closed before end of input")
}

// lexGroup consumes a `!!{…}` grouping bang starting at the first `!`. The
// body is kept verbatim (escapes included) and re-lexed when the group is
// parsed. Only structural braces count toward group depth: a `{` that opens
// an inner payload switches to payload rules, under which a literal `{` is
// plain text and an unescaped `}` closes the payload, not the group.
func lexGroup(input string, start, base int) (token, int, error) {
	pos := start + 2
	if pos >= len(input) || input[pos] != '{' {
		return token{}, 0, parseErr(base+pos, ErrInvalidOperand, "grouping bang requires a payload")
	}
	bodyStart := pos + 1
	depth := 1
	inPayload := false
	i := bodyStart
	for i < len(input) {
		switch input[i] {
		case '\\':
			if i+1 >= len(input) {
				return token{}, 0, parseErr(base+len(input), ErrUnterminatedPayload, "group not closed before end of input")
			}
			i += 2
		case '{':
			if !inPayload {
				// A `!!{` opens a nested group; any other brace opens a
				// payload.
				if i >= bodyStart+2 && input[i-1] == '!' && input[i-2] == '!' {
					depth++
				} else {
					inPayload = true
				}
			}
			i++
		case '}':
			if inPayload {
				inPayload = false
			} else {
				depth--
				if depth == 0 {
					return token{kind: tokGroup, text: input[bodyStart:i], offset: base + bodyStart}, i + 1, nil
				}
			}
			i++
		default:
			i++
		}
	}
	return token{}, 0, parseErr(base+len(input), ErrUnterminatedPayload, "group not closed before end of input")
}
