package csv

import "strings"

// SplitRow tokenizes one line of delimited text.
//
// A comma splits the line only when the number of quote characters after it
// is even, i.e. when it is not inside a quoted field. Quotes are retained.
// Trailing empty tokens are removed, keeping at least one token.
func SplitRow(line string) []string {
	remaining := strings.Count(line, `"`)
	fields := make([]string, 0, 8)

	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			remaining--
		case ',':
			if remaining%2 == 0 {
				fields = append(fields, line[start:i])
				start = i + 1
			}
		}
	}
	fields = append(fields, line[start:])

	n := len(fields)
	for n > 1 && fields[n-1] == "" {
		n--
	}
	return fields[:n:n]
}
