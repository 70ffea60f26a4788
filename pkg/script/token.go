package script

import (
	"fmt"
	"strings"
)

// SplitWords splits a command line into words with shell-style quoting:
// whitespace separates words, single and double quotes group them, and a
// backslash escapes the next character outside single quotes. Quotes do not
// survive into the output words.
func SplitWords(line string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		started bool
		quote   rune // 0, '\'' or '"'
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			started = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			started = true
		case r == ' ' || r == '\t':
			if started {
				words = append(words, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}

	if escaped {
		return nil, fmt.Errorf("%w: trailing backslash", ErrParse)
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated %c quote", ErrParse, quote)
	}
	if started {
		words = append(words, current.String())
	}
	return words, nil
}
