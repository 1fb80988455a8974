package discover

import (
	"github.com/standardbeagle/nargo-mutants/internal/scan"
	"github.com/standardbeagle/nargo-mutants/internal/types"
)

// testExclusions locates #[test] and #[test(...)] attributed items and
// returns the byte spans [attr_start, item_end) whose contents must not
// be mutated. The pass is textual: it finds the attribute on code bytes,
// then the next code-classified '{' and its matching '}' by brace depth.
// Braces inside strings and comments do not count.
func testExclusions(src []byte, cls *scan.Classification) []types.Span {
	var spans []types.Span

	i := 0
	for i < len(src) {
		if !(cls.IsCode(i) && src[i] == '#' && i+1 < len(src) && src[i+1] == '[') {
			i++
			continue
		}
		attrStart := i
		rest, ok := matchTestAttribute(src, cls, i+2)
		if !ok {
			i++
			continue
		}
		end := itemEnd(src, cls, rest)
		spans = append(spans, types.Span{Start: attrStart, End: end})
		i = end
	}

	return spans
}

// matchTestAttribute checks that the attribute starting after "#[" is
// named exactly "test", optionally with arguments like #[test(should_fail)].
// It returns the offset just past the attribute's closing ']'.
func matchTestAttribute(src []byte, cls *scan.Classification, i int) (int, bool) {
	i = skipSpace(src, i)
	nameStart := i
	for i < len(src) && isIdentByte(src[i]) {
		i++
	}
	if string(src[nameStart:i]) != "test" {
		return 0, false
	}
	i = skipSpace(src, i)
	if i >= len(src) {
		return 0, false
	}
	switch src[i] {
	case ']':
		return i + 1, true
	case '(':
		// Consume the argument list up to its ')' and the final ']'.
		// Parens inside the argument list do not nest in practice, but
		// a depth counter costs nothing.
		depth := 1
		i++
		for i < len(src) && depth > 0 {
			if cls.IsCode(i) {
				if src[i] == '(' {
					depth++
				} else if src[i] == ')' {
					depth--
				}
			}
			i++
		}
		i = skipSpace(src, i)
		if i < len(src) && src[i] == ']' {
			return i + 1, true
		}
		return len(src), true
	}
	return 0, false
}

// itemEnd walks forward from the end of the attribute, finds the item's
// opening '{' at brace depth 0, and returns the offset just past its
// matching '}'. An unterminated item extends to end of file.
func itemEnd(src []byte, cls *scan.Classification, from int) int {
	i := from
	for i < len(src) {
		if cls.IsCode(i) && src[i] == '{' {
			break
		}
		i++
	}
	if i >= len(src) {
		return len(src)
	}

	depth := 0
	for i < len(src) {
		if cls.IsCode(i) {
			switch src[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return i + 1
				}
			}
		}
		i++
	}
	return len(src)
}

func skipSpace(src []byte, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r') {
		i++
	}
	return i
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
