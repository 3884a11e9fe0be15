// Package moderation masks configured words in displayed text.
// The transcript itself always keeps the original text.
package moderation

import (
	"log/slog"
	"peer-chat/errors"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

type Moderator struct {
	log      *slog.Logger
	matcher  *goahocorasick.Machine
	maskRune rune
}

// folded is the searchable form of a text: lowercased, leet mapped back to
// letters, separators removed. positions[i] is the rune index in the
// original text of folded rune i.
type folded struct {
	runes     []rune
	positions []int
}

// ParseWords splits a comma separated list, ignoring blanks.
func ParseWords(csv string) []string {
	words := lo.Map(strings.Split(csv, ","), func(w string, _ int) string {
		return strings.TrimSpace(w)
	})
	return lo.Compact(words)
}

// NewModerator builds the matcher over the folded form of words.
func NewModerator(log *slog.Logger, words []string, maskRune rune) (*Moderator, error) {
	patterns := lo.FilterMap(words, func(w string, _ int) ([]rune, bool) {
		f := fold(w)
		return f.runes, len(f.runes) > 0
	})
	if len(patterns) == 0 {
		return nil, errors.ErrEmptyWords
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	log.Debug("Moderator ready", "words", len(patterns))
	return &Moderator{log: log, matcher: m, maskRune: maskRune}, nil
}

// Censor replaces every matched word with the mask rune, separators inside
// the match included. Text outside matches is untouched.
func (m *Moderator) Censor(original string) string {
	f := fold(original)
	if len(f.runes) == 0 {
		return original
	}
	terms := m.matcher.MultiPatternSearch(f.runes, false)
	if len(terms) == 0 {
		return original
	}

	out := []rune(original)
	for _, term := range terms {
		first, last := term.Pos, term.Pos+len(term.Word)-1
		if first < 0 || last >= len(f.positions) {
			continue
		}
		for i := f.positions[first]; i <= f.positions[last]; i++ {
			out[i] = m.maskRune
		}
	}
	return string(out)
}

func fold(input string) folded {
	original := []rune(input)
	f := folded{
		runes:     make([]rune, 0, len(original)),
		positions: make([]int, 0, len(original)),
	}
	for i, r := range original {
		r = unleet(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		f.runes = append(f.runes, unicode.ToLower(r))
		f.positions = append(f.positions, i)
	}
	return f
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
