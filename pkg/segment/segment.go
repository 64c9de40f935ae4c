// Package segment splits normalized judgment text into sentences and tokens.
//
// Sentence detection is citation-aware: periods inside bracketed citation
// spans, after legal abbreviations, after single initials and after
// paragraph numbers do not end a sentence.
package segment

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxBracketSpan is the longest bracketed span, in bytes, whose periods do
// not end a sentence. Unclosed or longer brackets suppress nothing.
const maxBracketSpan = 40

// TokenKind classifies a token.
type TokenKind int

const (
	// TokenWord is a token containing at least one letter.
	TokenWord TokenKind = iota
	// TokenNumber is a run of digits with optional internal separators.
	TokenNumber
	// TokenPunctuation is a single punctuation or symbol character.
	TokenPunctuation
)

func (k TokenKind) String() string {
	switch k {
	case TokenWord:
		return "word"
	case TokenNumber:
		return "number"
	case TokenPunctuation:
		return "punctuation"
	}
	return "unknown"
}

// Token is one token of a sentence. Offset is a byte offset into the text
// passed to Sentences.
type Token struct {
	Text   string
	Offset int
	Kind   TokenKind
}

// Sentence is one sentence of the segmented text.
type Sentence struct {
	Text   string
	Offset int
	Tokens []Token
}

// Words returns the word tokens of the sentence.
func (s Sentence) Words() []Token {
	words := make([]Token, 0, len(s.Tokens))
	for _, token := range s.Tokens {
		if token.Kind == TokenWord {
			words = append(words, token)
		}
	}
	return words
}

// Segmenter splits text into sentences. It holds only configuration and is
// safe for concurrent use.
type Segmenter struct {
	keepPunctuation bool
	abbreviations   map[string]bool
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithKeepPunctuation makes the Segmenter emit punctuation tokens.
func WithKeepPunctuation(keep bool) Option {
	return func(s *Segmenter) {
		s.keepPunctuation = keep
	}
}

// WithAbbreviations adds abbreviations (without the trailing period) that
// must not end a sentence.
func WithAbbreviations(abbreviations ...string) Option {
	return func(s *Segmenter) {
		for _, abbreviation := range abbreviations {
			s.abbreviations[strings.ToLower(strings.TrimSuffix(abbreviation, "."))] = true
		}
	}
}

// New creates a Segmenter with the built-in legal abbreviation list.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{abbreviations: make(map[string]bool, len(legalAbbreviations))}
	for _, abbreviation := range legalAbbreviations {
		s.abbreviations[abbreviation] = true
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sentences returns the sentences of text in order. The sequence is lazy
// and can be ranged over any number of times.
func (s *Segmenter) Sentences(text string) iter.Seq[Sentence] {
	return func(yield func(Sentence) bool) {
		start := 0
		paragraphStart := 0
		bracketEnd := -1
		for i := 0; i < len(text); i++ {
			switch text[i] {
			case '[', '(':
				if i > bracketEnd {
					bracketEnd = max(bracketEnd, closingBracket(text, i))
				}
			case '\n':
				end, isBreak := paragraphBreak(text, i)
				if !isBreak {
					continue
				}
				if !s.emit(text, start, i, yield) {
					return
				}
				start, paragraphStart = end, end
				i = end - 1
			case '.', '?', '!':
				if i < bracketEnd {
					continue
				}
				end, ok := s.boundaryAfter(text, i, paragraphStart)
				if !ok {
					continue
				}
				if !s.emit(text, start, end, yield) {
					return
				}
				start = end
				i = end - 1
			}
		}
		s.emit(text, start, len(text), yield)
	}
}

// emit yields the sentence text[start:end] unless it is blank. It returns
// false when the consumer stopped iteration.
func (s *Segmenter) emit(text string, start, end int, yield func(Sentence) bool) bool {
	segment := text[start:end]
	trimmed := strings.TrimLeftFunc(segment, unicode.IsSpace)
	offset := start + len(segment) - len(trimmed)
	trimmed = strings.TrimRightFunc(trimmed, unicode.IsSpace)
	if trimmed == "" {
		return true
	}
	return yield(Sentence{
		Text:   trimmed,
		Offset: offset,
		Tokens: s.Tokens(trimmed, offset),
	})
}

// closingBracket returns the index of the bracket closing the one opened at
// i, or -1 when it is not closed within maxBracketSpan bytes on the same line.
func closingBracket(text string, i int) int {
	depth := 0
	limit := min(len(text), i+maxBracketSpan)
	for j := i; j < limit; j++ {
		switch text[j] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
			if depth == 0 {
				return j
			}
		case '\n':
			return -1
		}
	}
	return -1
}

// paragraphBreak reports whether the newline at i starts a blank-line
// paragraph break, and returns the index just after it.
func paragraphBreak(text string, i int) (int, bool) {
	j := i + 1
	sawBlank := false
	for j < len(text) {
		switch text[j] {
		case '\n':
			sawBlank = true
		case ' ', '\t', '\r':
		default:
			return j, sawBlank
		}
		j++
	}
	return j, true
}

// boundaryAfter decides whether the terminal punctuation at i ends a
// sentence. On success it returns the end offset of the sentence, which
// includes trailing closing quotes and brackets.
func (s *Segmenter) boundaryAfter(text string, i, paragraphStart int) (int, bool) {
	end := i + 1
	for end < len(text) && strings.IndexByte(`"')]`, text[end]) >= 0 {
		end++
	}
	if end == len(text) {
		return end, true
	}
	if !isSpaceByte(text[end]) {
		return 0, false
	}

	next := end
	for next < len(text) && isSpaceByte(text[next]) {
		next++
	}
	if next == len(text) {
		return end, true
	}
	if !startsSentence(text[next:]) {
		return 0, false
	}

	if text[i] == '.' && s.suppressesPeriod(text, i, paragraphStart) {
		return 0, false
	}
	return end, true
}

// suppressesPeriod reports whether the period at i belongs to an
// abbreviation, an initial or a paragraph number.
func (s *Segmenter) suppressesPeriod(text string, i, paragraphStart int) bool {
	wordStart := i
	for wordStart > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:wordStart])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		wordStart -= size
	}
	word := text[wordStart:i]
	if word == "" {
		return false
	}

	if isDigits(word) {
		// "12. The court ..." at the start of a paragraph.
		return strings.TrimSpace(text[paragraphStart:wordStart]) == ""
	}

	if s.abbreviations[strings.ToLower(word)] {
		return true
	}

	if utf8.RuneCountInString(word) == 1 {
		r, _ := utf8.DecodeRuneInString(word)
		if unicode.IsUpper(r) {
			return true
		}
	}

	// Dotted forms such as "e.g." and "U.K.".
	if wordStart > 0 && text[wordStart-1] == '.' && utf8.RuneCountInString(word) <= 2 {
		return true
	}
	return false
}

func startsSentence(rest string) bool {
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsUpper(r) || unicode.IsDigit(r) || strings.ContainsRune(`"'([`, r)
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
