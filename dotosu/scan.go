package dotosu

import "strconv"

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func skipWhitespace(buf []byte, i int) int {
	for i < len(buf) && isSpace(buf[i]) {
		i++
	}
	return i
}

// skipTo returns the offset of the next c at or after i, or len(buf).
func skipTo(buf []byte, i int, c byte) int {
	for i < len(buf) && buf[i] != c {
		i++
	}
	return i
}

// trimRight drops trailing whitespace from buf[i:j].
func trimRight(buf []byte, i, j int) int {
	for j > i && isSpace(buf[j-1]) {
		j--
	}
	return j
}

// scanDecimal reads a run of digits with at most one '.', without sign or
// exponent. It reports the end offset; end == i means nothing was read.
func scanDecimal(buf []byte, i int) (end int) {
	dot := false
	for end = i; end < len(buf); end++ {
		c := buf[end]
		if c == '.' && !dot {
			dot = true
			continue
		}
		if !isDigit(c) {
			break
		}
	}
	if end-i == 1 && dot {
		return i
	}
	return end
}

// scanNumber reads a float the way scanf's %f does: optional leading
// whitespace, sign, digits with one optional '.', optional exponent.
func scanNumber(buf []byte, i int) (v float64, next int, ok bool) {
	i = skipWhitespace(buf, i)
	start := i
	if i < len(buf) && (buf[i] == '-' || buf[i] == '+') {
		i++
	}
	seenDigit := false
	for i < len(buf) && isDigit(buf[i]) {
		i++
		seenDigit = true
	}
	if i < len(buf) && buf[i] == '.' {
		i++
		for i < len(buf) && isDigit(buf[i]) {
			i++
			seenDigit = true
		}
	}
	if !seenDigit {
		return 0, start, false
	}
	if i < len(buf) && (buf[i] == 'e' || buf[i] == 'E') {
		j := i + 1
		if j < len(buf) && (buf[j] == '-' || buf[j] == '+') {
			j++
		}
		if j < len(buf) && isDigit(buf[j]) {
			for j < len(buf) && isDigit(buf[j]) {
				j++
			}
			i = j
		}
	}
	v, err := strconv.ParseFloat(string(buf[start:i]), 64)
	if err != nil {
		return 0, start, false
	}
	return v, i, true
}

// scanTuple fills out with comma-separated numbers from buf[i:] and returns
// how many it read. It stops at the first field that does not scan or when
// out is full; whatever follows is ignored.
func scanTuple(buf []byte, i int, out []float64) int {
	n := 0
	for n < len(out) {
		if n > 0 {
			i = skipWhitespace(buf, i)
			if i >= len(buf) || buf[i] != ',' {
				return n
			}
			i++
		}
		v, next, ok := scanNumber(buf, i)
		if !ok {
			return n
		}
		out[n] = v
		n++
		i = next
	}
	return n
}
