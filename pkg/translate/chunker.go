package translate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// splitIntoChunks cuts text into pieces of at most maxRunes runes, preferring
// sentence and paragraph boundaries. Concatenating the result yields text
// unchanged. maxRunes <= 0 disables splitting.
func splitIntoChunks(text string, maxRunes int) []string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentRunes := 0
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentRunes = 0
		}
	}

	for _, unit := range splitBySentences(text) {
		n := utf8.RuneCountInString(unit)
		if currentRunes+n > maxRunes {
			flush()
		}
		if n > maxRunes {
			pieces := splitByWords(unit, maxRunes)
			// The tail of an oversized sentence can still share a chunk.
			chunks = append(chunks, pieces[:len(pieces)-1]...)
			unit = pieces[len(pieces)-1]
			n = utf8.RuneCountInString(unit)
		}
		current.WriteString(unit)
		currentRunes += n
	}
	flush()
	return chunks
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '।', '؟':
		return true
	}
	return false
}

// splitBySentences cuts after each line break and after each run of
// terminators followed by whitespace. Trailing whitespace stays with the
// preceding sentence.
func splitBySentences(text string) []string {
	var units []string
	start, i := 0, 0
	skipSpace := func() {
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(r) {
				return
			}
			i += size
		}
	}

	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		switch {
		case r == '\n':
		case isTerminator(r):
			for i < len(text) {
				r, size = utf8.DecodeRuneInString(text[i:])
				if !isTerminator(r) {
					break
				}
				i += size
			}
			if i < len(text) {
				if r, _ = utf8.DecodeRuneInString(text[i:]); !unicode.IsSpace(r) {
					// "3.14" is not a boundary.
					continue
				}
			}
		default:
			continue
		}
		skipSpace()
		units = append(units, text[start:i])
		start = i
	}
	if start < len(text) {
		units = append(units, text[start:])
	}
	return units
}

// splitByWords hard-splits s into pieces of at most maxRunes, cutting after
// the last whitespace when there is one.
func splitByWords(s string, maxRunes int) []string {
	var pieces []string
	for utf8.RuneCountInString(s) > maxRunes {
		cut, runes, lastSpace := 0, 0, -1
		for i, r := range s {
			if runes == maxRunes {
				cut = i
				break
			}
			if unicode.IsSpace(r) {
				lastSpace = i + utf8.RuneLen(r)
			}
			runes++
		}
		if lastSpace > 0 {
			cut = lastSpace
		}
		pieces = append(pieces, s[:cut])
		s = s[cut:]
	}
	return append(pieces, s)
}

// trimEdges separates leading and trailing whitespace from the core text so
// backends that normalise whitespace do not lose it.
func trimEdges(s string) (lead, core, trail string) {
	core = strings.TrimLeftFunc(s, unicode.IsSpace)
	lead = s[:len(s)-len(core)]
	trimmed := strings.TrimRightFunc(core, unicode.IsSpace)
	trail = core[len(trimmed):]
	return lead, trimmed, trail
}
