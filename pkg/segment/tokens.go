package segment

import (
	"unicode"
	"unicode/utf8"
)

// legalAbbreviations are lower-cased abbreviations whose trailing period
// does not end a sentence in legal prose.
var legalAbbreviations = []string{
	// Citation and statutory references.
	"v", "vs", "no", "nos", "para", "paras", "s", "ss", "r", "rr", "art", "arts",
	"ch", "cl", "sch", "pt", "reg", "regs", "pp", "p", "fn", "ed", "eds", "vol",
	"app", "eg", "ie", "cf", "al", "ibid", "op", "cit", "loc", "et", "seq", "id",
	// Company and party designations.
	"pte", "sdn", "bhd", "pty", "inc", "ltd", "corp", "plc", "llc", "llp", "co",
	"ors", "anor", "assn", "dept", "div", "comm", "dist", "crim",
	// Titles and judicial offices.
	"dr", "mr", "mrs", "ms", "prof", "rev", "hon", "rt", "jr", "sr", "gen",
	"col", "sgt", "lj", "ljj", "jj", "cj", "ex", "re", "st",
}

// Tokens splits a sentence into tokens. base is added to every token offset
// so offsets refer to the enclosing text. Hyphens and apostrophes between
// letters or digits stay inside the token, as do "." and "," between digits.
func (s *Segmenter) Tokens(sentence string, base int) []Token {
	var tokens []Token
	i := 0
	for i < len(sentence) {
		r, size := utf8.DecodeRuneInString(sentence[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}

		if !isWordRune(r) {
			if s.keepPunctuation {
				tokens = append(tokens, Token{Text: sentence[i : i+size], Offset: base + i, Kind: TokenPunctuation})
			}
			i += size
			continue
		}

		start := i
		hasLetter := unicode.IsLetter(r)
		prev := r
		i += size
		for i < len(sentence) {
			r, size = utf8.DecodeRuneInString(sentence[i:])
			if isWordRune(r) {
				hasLetter = hasLetter || unicode.IsLetter(r)
				prev = r
				i += size
				continue
			}
			if joinsToken(r, prev, sentence[i+size:]) {
				prev = r
				i += size
				continue
			}
			break
		}

		kind := TokenNumber
		if hasLetter {
			kind = TokenWord
		}
		tokens = append(tokens, Token{Text: sentence[start:i], Offset: base + start, Kind: kind})
	}
	return tokens
}

// joinsToken reports whether the separator r continues the current token:
// it must sit between two word runes, and "." or "," must sit between digits.
func joinsToken(r, prev rune, rest string) bool {
	next, _ := utf8.DecodeRuneInString(rest)
	if next == utf8.RuneError || !isWordRune(next) || !isWordRune(prev) {
		return false
	}
	switch r {
	case '-', '\'':
		return true
	case '.', ',':
		return unicode.IsDigit(prev) && unicode.IsDigit(next)
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
