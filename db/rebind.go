package db

import "strconv"

// Rebind rewrites `?` placeholders into the provider's syntax. The
// postgres driver wants $1, $2, ...; mysql and sqlite take `?` as is.
// Quoted text is respected: a `?` inside string literals or quoted
// identifiers is left alone.
func Rebind(provider, query string) string {
	switch provider {
	case "postgres", "postgresql":
	default:
		return query
	}

	out := make([]byte, 0, len(query)+8)
	n := 0
	var quote byte
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case quote != 0:
			out = append(out, ch)
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
			out = append(out, ch)
		case ch == '?':
			n++
			out = append(out, '$')
			out = strconv.AppendInt(out, int64(n), 10)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
