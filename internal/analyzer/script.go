package analyzer

import "fmt"

// parseScript validates script source under a permissive grammar: it
// checks delimiter balance while tracking strings, template literals,
// comments and regex literals. Angle brackets are never tracked, so
// inline JSX expressions pass through untouched; the braces a JSX tree
// contains still have to balance.
//
// A quoted string that reaches end of line is closed silently rather
// than reported: JSX text nodes routinely contain stray apostrophes and
// the grammar must forgive them.
func parseScript(src string) *ParseError {
	type opener struct {
		ch   byte
		line int
		col  int
	}

	var stack []opener
	line, col := 1, 0

	// prevSig is the last significant byte seen in code position; it
	// decides whether a '/' starts a regex literal or is division.
	var prevSig byte
	var lastWord string
	var word []byte

	var stringQuote byte // 0 when not inside a quoted string
	inLineComment := false
	inBlockComment := false
	blockCommentLine, blockCommentCol := 0, 0

	push := func(ch byte) { stack = append(stack, opener{ch, line, col}) }
	top := func() byte {
		if len(stack) == 0 {
			return 0
		}
		return stack[len(stack)-1].ch
	}
	pop := func() { stack = stack[:len(stack)-1] }

	n := len(src)
	for i := 0; i < n; i++ {
		b := src[i]

		if b == '\n' {
			line++
			col = 0
			inLineComment = false
			stringQuote = 0 // permissive: auto-close strings at EOL
			continue
		}
		if b&0xC0 != 0x80 { // don't count UTF-8 continuation bytes
			col++
		}

		if inLineComment {
			continue
		}
		if inBlockComment {
			if b == '*' && i+1 < n && src[i+1] == '/' {
				inBlockComment = false
				i++
				col++
			}
			continue
		}
		if stringQuote != 0 {
			if b == '\\' {
				i++
				col++
			} else if b == stringQuote {
				stringQuote = 0
				prevSig = 'x' // a string is a value
			}
			continue
		}

		// Inside template literal text.
		if top() == '`' {
			switch b {
			case '\\':
				i++
				col++
			case '`':
				pop()
				prevSig = 'x'
			case '$':
				if i+1 < n && src[i+1] == '{' {
					i++
					col++
					push('$')
				}
			}
			continue
		}

		switch b {
		case '/':
			if i+1 < n && src[i+1] == '/' {
				inLineComment = true
				continue
			}
			if i+1 < n && src[i+1] == '*' {
				inBlockComment = true
				blockCommentLine, blockCommentCol = line, col
				i++
				col++
				continue
			}
			if regexAllowed(prevSig, lastWord) {
				if end, ok := scanRegex(src, i+1); ok {
					for j := i + 1; j < end; j++ {
						if src[j]&0xC0 != 0x80 {
							col++
						}
					}
					i = end - 1
					prevSig = 'x'
					continue
				}
			}
			prevSig = '/'
		case '\'', '"':
			stringQuote = b
		case '`':
			push('`')
		case '(', '[', '{':
			push(b)
			prevSig = b
		case ')', ']', '}':
			want := matchingOpener(b)
			if b == '}' && top() == '$' {
				pop() // back into template text
				continue
			}
			if top() != want {
				return &ParseError{
					Line:    line,
					Column:  col,
					Message: fmt.Sprintf("unexpected %q", string(b)),
					Kind:    KindSyntax,
				}
			}
			pop()
			prevSig = b
		default:
			if b != ' ' && b != '\t' && b != '\r' {
				prevSig = b
			}
		}

		// Track the last identifier for keyword-aware regex detection.
		if isWordByte(b) {
			word = append(word, b)
		} else if len(word) > 0 {
			lastWord = string(word)
			word = word[:0]
		}
	}

	if inBlockComment {
		return &ParseError{
			Line:    blockCommentLine,
			Column:  blockCommentCol,
			Message: "unterminated block comment",
			Kind:    KindSyntax,
		}
	}
	if len(stack) > 0 {
		o := stack[len(stack)-1]
		name := string(o.ch)
		if o.ch == '$' {
			name = "${"
		}
		return &ParseError{
			Line:    o.line,
			Column:  o.col,
			Message: fmt.Sprintf("unclosed %q", name),
			Kind:    KindSyntax,
		}
	}
	return nil
}

// scanRegex scans a candidate regex literal starting just after the
// opening '/'. It returns the index one past the closing '/' and whether
// a terminator was found before the end of the line; when it was not,
// the '/' is treated as division.
func scanRegex(src string, start int) (int, bool) {
	inClass := false
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '\n':
			return 0, false
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				return i + 1, true
			}
		}
	}
	return 0, false
}

var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "case": true, "in": true, "of": true,
	"delete": true, "void": true, "new": true, "do": true, "else": true,
	"yield": true, "await": true, "instanceof": true,
}

// regexAllowed decides, from the previous significant byte, whether a
// '/' can open a regex literal at this position.
func regexAllowed(prevSig byte, lastWord string) bool {
	switch prevSig {
	case 0, '(', '[', '{', ',', ';', '=', ':', '!', '&', '|', '?', '+', '-', '*', '%', '^', '~', '<', '>':
		return true
	}
	if isWordByte(prevSig) && regexKeywords[lastWord] {
		return true
	}
	return false
}

func matchingOpener(closer byte) byte {
	switch closer {
	case ')':
		return '('
	case ']':
		return '['
	case '}':
		return '{'
	}
	return 0
}

func isWordByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
