package transform

import (
	"strings"
	"unicode"
)

const stutterEvery = 5

var faces = []string{
	"(・`ω´・)",
	"owo",
	"UwU",
	">w<",
	"^w^",
	"(ᵘʷᵘ)",
}

// Uwuify rewrites text word by word: r and l become w, n before a vowel
// gains a y, "ove" becomes "uv", every fifth word stutters and a face follows
// each sentence-ending word. Whitespace, links, mentions and custom emoji
// are kept as they are. The result depends on the input only.
func Uwuify(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + len(s)/4)

	word := 0
	for _, tok := range tokenize(s) {
		if strings.TrimSpace(tok) == "" {
			sb.WriteString(tok)
			continue
		}

		sb.WriteString(uwuWord(tok, word))
		word++
	}

	return sb.String()
}

func tokenize(s string) []string {
	var (
		tokens []string
		start  int
		space  bool
	)

	for i, r := range s {
		isSpace := unicode.IsSpace(r)
		if i > 0 && isSpace != space {
			tokens = append(tokens, s[start:i])
			start = i
		}
		space = isSpace
	}

	if start < len(s) {
		tokens = append(tokens, s[start:])
	}

	return tokens
}

func uwuWord(w string, idx int) string {
	if keepAsIs(w) {
		return w
	}

	core := strings.TrimRightFunc(w, unicode.IsPunct)
	trailing := w[len(core):]

	core = replaceLetters(strings.ReplaceAll(core, "ove", "uv"))

	if idx%stutterEvery == stutterEvery-1 {
		core = stutter(core)
	}

	if endsSentence(trailing) {
		return core + trailing + " " + faces[idx%len(faces)]
	}

	return core + trailing
}

func keepAsIs(w string) bool {
	return strings.Contains(w, "://") ||
		strings.HasPrefix(w, "@") ||
		strings.HasPrefix(w, "<") ||
		strings.HasPrefix(w, ":") ||
		strings.HasPrefix(w, "#")
}

func replaceLetters(s string) string {
	rs := []rune(s)
	out := make([]rune, 0, len(rs)+2)

	for i, r := range rs {
		switch {
		case r == 'r' || r == 'l':
			out = append(out, 'w')
		case r == 'R' || r == 'L':
			out = append(out, 'W')
		case (r == 'n' || r == 'N') && i+1 < len(rs) && isVowel(rs[i+1]):
			y := 'y'
			if unicode.IsUpper(rs[i+1]) {
				y = 'Y'
			}
			out = append(out, r, y)
		default:
			out = append(out, r)
		}
	}

	return string(out)
}

func stutter(s string) string {
	rs := []rune(s)
	if len(rs) < 3 || !unicode.IsLetter(rs[0]) {
		return s
	}

	return string(rs[0]) + "-" + s
}

func endsSentence(trailing string) bool {
	return strings.HasSuffix(trailing, ".") ||
		strings.HasSuffix(trailing, "!") ||
		strings.HasSuffix(trailing, "?")
}

func isVowel(r rune) bool {
	return strings.ContainsRune("aeiouAEIOU", r)
}
