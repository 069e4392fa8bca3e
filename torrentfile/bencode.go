package torrentfile

import (
	"bytes"
	"fmt"
	"strconv"
)

// maxDepth bounds list/dict nesting so hostile input cannot exhaust the stack.
const maxDepth = 256

// scanner is a strict bencode reader. Decoded values are int64, string,
// []interface{} and map[string]interface{}.
type scanner struct {
	data  []byte
	pos   int
	depth int
}

func decodeValue(data []byte) (interface{}, error) {
	s := &scanner{data: data}
	v, err := s.value()
	if err != nil {
		return nil, err
	}
	if s.pos != len(s.data) {
		return nil, s.errorf(s.pos, "trailing data after top-level value")
	}
	return v, nil
}

func (s *scanner) errorf(pos int, format string, args ...interface{}) error {
	return &SyntaxError{Pos: pos, Reason: fmt.Sprintf(format, args...)}
}

func (s *scanner) value() (interface{}, error) {
	if s.pos >= len(s.data) {
		return nil, s.errorf(s.pos, "unexpected end of data")
	}
	switch c := s.data[s.pos]; {
	case c == 'i':
		return s.integer()
	case c == 'l':
		return s.list()
	case c == 'd':
		return s.dict()
	case isDigit(c):
		return s.str()
	default:
		return nil, s.errorf(s.pos, "unexpected byte %q", c)
	}
}

func (s *scanner) integer() (int64, error) {
	start := s.pos
	s.pos++ // 'i'
	end := bytes.IndexByte(s.data[s.pos:], 'e')
	if end < 0 {
		return 0, s.errorf(start, "unterminated integer")
	}
	digits := s.data[s.pos : s.pos+end]
	if reason := checkInteger(digits); reason != "" {
		return 0, s.errorf(start, "%s", reason)
	}
	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, s.errorf(start, "integer %s out of range", digits)
	}
	s.pos += end + 1
	return n, nil
}

// checkInteger enforces the canonical integer form: optional minus, no
// leading zeros, no "-0".
func checkInteger(digits []byte) string {
	if len(digits) == 0 {
		return "empty integer"
	}
	neg := digits[0] == '-'
	if neg {
		digits = digits[1:]
	}
	if len(digits) == 0 {
		return "integer has no digits"
	}
	for _, c := range digits {
		if !isDigit(c) {
			return fmt.Sprintf("invalid byte %q in integer", c)
		}
	}
	if digits[0] == '0' {
		if neg {
			return "negative zero"
		}
		if len(digits) > 1 {
			return "integer has leading zeros"
		}
	}
	return ""
}

func (s *scanner) str() (string, error) {
	start := s.pos
	for s.pos < len(s.data) && isDigit(s.data[s.pos]) {
		s.pos++
	}
	if s.pos >= len(s.data) {
		return "", s.errorf(start, "unterminated string length")
	}
	if s.data[s.pos] != ':' {
		return "", s.errorf(s.pos, "expected ':' after string length, got %q", s.data[s.pos])
	}
	prefix := s.data[start:s.pos]
	if len(prefix) > 1 && prefix[0] == '0' {
		return "", s.errorf(start, "string length has leading zeros")
	}
	length, err := strconv.ParseInt(string(prefix), 10, 64)
	if err != nil {
		return "", s.errorf(start, "string length %s out of range", prefix)
	}
	s.pos++ // ':'
	if remaining := int64(len(s.data) - s.pos); length > remaining {
		return "", s.errorf(start, "string length %d exceeds remaining %d bytes", length, remaining)
	}
	v := string(s.data[s.pos : s.pos+int(length)])
	s.pos += int(length)
	return v, nil
}

func (s *scanner) enter(start int) error {
	s.depth++
	if s.depth > maxDepth {
		return s.errorf(start, "nesting deeper than %d", maxDepth)
	}
	return nil
}

func (s *scanner) list() ([]interface{}, error) {
	start := s.pos
	if err := s.enter(start); err != nil {
		return nil, err
	}
	s.pos++ // 'l'

	list := []interface{}{}
	for {
		if s.pos >= len(s.data) {
			return nil, s.errorf(start, "unterminated list")
		}
		if s.data[s.pos] == 'e' {
			break
		}
		item, err := s.value()
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	s.pos++
	s.depth--
	return list, nil
}

func (s *scanner) dict() (map[string]interface{}, error) {
	start := s.pos
	if err := s.enter(start); err != nil {
		return nil, err
	}
	s.pos++ // 'd'

	dict := map[string]interface{}{}
	for {
		if s.pos >= len(s.data) {
			return nil, s.errorf(start, "unterminated dictionary")
		}
		if s.data[s.pos] == 'e' {
			break
		}
		keyPos := s.pos
		if !isDigit(s.data[keyPos]) {
			return nil, s.errorf(keyPos, "dictionary key must be a byte string")
		}
		key, err := s.str()
		if err != nil {
			return nil, err
		}
		if _, dup := dict[key]; dup {
			return nil, s.errorf(keyPos, "duplicate dictionary key %q", key)
		}
		value, err := s.value()
		if err != nil {
			return nil, err
		}
		dict[key] = value
	}
	s.pos++
	s.depth--
	return dict, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
