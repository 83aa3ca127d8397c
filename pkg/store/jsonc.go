package store

// Persisted documents are meant to be hand-editable, so reads tolerate
// line (//) and block (/* */) comments. Writes always emit strict JSON.

// stripComments blanks comments outside string literals so the remainder
// parses as plain JSON. Byte offsets of the real content are preserved,
// which keeps json.Unmarshal error positions usable.
func stripComments(raw []byte) []byte {
	out := make([]byte, len(raw))
	copy(out, raw)

	const (
		stateCode = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateCode
	escaped := false

	for i := 0; i < len(out); i++ {
		c := out[i]

		switch state {
		case stateCode:
			switch {
			case c == '"':
				state = stateString
			case c == '/' && i+1 < len(out) && out[i+1] == '/':
				state = stateLineComment
				out[i] = ' '
			case c == '/' && i+1 < len(out) && out[i+1] == '*':
				// Blank the opening "/*" in one step so its star cannot
				// double as the closing one ("/*/" is not a complete
				// comment).
				state = stateBlockComment
				out[i] = ' '
				out[i+1] = ' '
				i++
			}
		case stateString:
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				state = stateCode
			}
		case stateLineComment:
			if c == '\n' {
				state = stateCode
			} else {
				out[i] = ' '
			}
		case stateBlockComment:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i] = ' '
				out[i+1] = ' '
				i++
				state = stateCode
			} else if c != '\n' {
				out[i] = ' '
			}
		}
	}

	return out
}
