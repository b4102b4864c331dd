package channel

import (
	"fmt"
	"strconv"
	"strings"
)

// EncodeLine builds the wire form of one command. Arguments are formatted
// with their String method when they have one; floats use the shortest
// exact decimal form.
func EncodeLine(moduleTag, command string, args ...any) ([]byte, error) {
	tokens := make([]string, 0, len(args)+2)
	tokens = append(tokens, moduleTag, command)
	for _, a := range args {
		tokens = append(tokens, formatToken(a))
	}
	for _, tok := range tokens {
		if tok == "" || strings.ContainsAny(tok, " \t\r\n\v\f") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidToken, tok)
		}
	}
	return []byte(strings.Join(tokens, " ") + "\n"), nil
}

func formatToken(a any) string {
	switch v := a.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}
