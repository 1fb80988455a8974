package scan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// classString renders the classification as one letter per byte for
// compact expectations: c=code, l=line, b=block, s=string, q=char.
func classString(src string) string {
	c := Classify([]byte(src))
	var b strings.Builder
	for i := 0; i < len(src); i++ {
		switch c.At(i) {
		case Code:
			b.WriteByte('c')
		case LineComment:
			b.WriteByte('l')
		case BlockComment:
			b.WriteByte('b')
		case StringLit:
			b.WriteByte('s')
		case CharLit:
			b.WriteByte('q')
		}
	}
	return b.String()
}

func TestClassifyPlainCode(t *testing.T) {
	assert.Equal(t, "cccccc", classString("a == b"))
}

func TestClassifyLineComment(t *testing.T) {
	// The newline itself is code; the comment stops before it.
	assert.Equal(t, "lllllllc"+"c", classString("// a==b\nx"))
}

func TestClassifyBlockComment(t *testing.T) {
	assert.Equal(t, "cbbbbbbbbc", classString("x/* == */y"))
}

func TestClassifyNestedBlockComment(t *testing.T) {
	src := "/* outer /* inner */ still */x"
	got := classString(src)
	assert.Equal(t, strings.Repeat("b", len(src)-1)+"c", got)
}

func TestClassifyUnterminatedBlockCommentExtendsToEOF(t *testing.T) {
	src := "a /* never closed =="
	got := classString(src)
	assert.Equal(t, "cc"+strings.Repeat("b", len(src)-2), got)
}

func TestClassifyStringLiteral(t *testing.T) {
	assert.Equal(t, "ccccc"+"ssssssss", classString(`let x"a == b"`))
}

func TestClassifyStringEscapes(t *testing.T) {
	// The escaped quote does not terminate the literal.
	src := `"a\"b"x`
	assert.Equal(t, "ssssssc", classString(src))
}

func TestClassifyStringWithNewline(t *testing.T) {
	src := "\"a\nb\"x"
	assert.Equal(t, "sssssc", classString(src))
}

func TestClassifyCharLiteral(t *testing.T) {
	assert.Equal(t, "qqqc", classString("'a'x"))
}

func TestClassifyCharEscape(t *testing.T) {
	assert.Equal(t, "qqqqc", classString(`'\''x`))
}

func TestClassifyCommentOpenersInertInString(t *testing.T) {
	src := `"// not a comment /*"x`
	got := classString(src)
	assert.Equal(t, strings.Repeat("s", len(src)-1)+"c", got)
}

func TestClassifyStringOpenerInertInComment(t *testing.T) {
	src := "// \"not a string\nx"
	got := classString(src)
	assert.Equal(t, strings.Repeat("l", len(src)-2)+"cc", got)
}

func TestClassifyUnterminatedString(t *testing.T) {
	src := `x"never closed`
	assert.Equal(t, "c"+strings.Repeat("s", len(src)-1), classString(src))
}

func TestCodeRange(t *testing.T) {
	c := Classify([]byte("a /*x*/ b"))
	assert.True(t, c.CodeRange(0, 1))
	assert.False(t, c.CodeRange(0, 5))
	assert.True(t, c.IsCode(8))
}

func TestAtOutOfRange(t *testing.T) {
	c := Classify([]byte("ab"))
	assert.Equal(t, Code, c.At(-1))
	assert.Equal(t, Code, c.At(99))
	assert.Equal(t, 2, c.Len())
}
