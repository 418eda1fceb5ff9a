package engine

import "strings"

// preprocessSource rewrites .shell source into text zygomys can read:
//
//	:wall          -> "__kw_wall"
//	extrusion-roof -> extrusion_roof
//	; note         -> // note
//
// Double-quoted strings pass through untouched, so type names such as
// "Generic - 400mm" keep their hyphens.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)

	n := len(source)
	for i := 0; i < n; {
		c := source[i]
		switch {
		case c == '"':
			end := closingQuote(source, i)
			out.WriteString(source[i:end])
			i = end

		case c == ';':
			for i < n && source[i] == ';' {
				i++
			}
			end := strings.IndexByte(source[i:], '\n')
			if end < 0 {
				end = n - i
			}
			out.WriteString("//")
			out.WriteString(source[i : i+end])
			i += end

		case c == ':' && i+1 < n && isLetter(source[i+1]):
			j := i + 1
			for j < n && isKeywordChar(source[j]) {
				j++
			}
			out.WriteString(`"` + kwPrefix + source[i+1:j] + `"`)
			i = j

		case c == '-' && i > 0 && i+1 < n && isWordChar(source[i-1]) && isLetter(source[i+1]):
			out.WriteByte('_')
			i++

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// closingQuote returns the index just past the string literal opening at
// start. An unterminated literal runs to the end of src.
func closingQuote(src string, start int) int {
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(src)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isKeywordChar(c byte) bool {
	return isWordChar(c) || c == '-'
}
