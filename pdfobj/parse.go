package pdfobj

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf16"
)

// Load reads a classic (non cross-reference-stream) PDF into a document
// graph. Objects are discovered by a single linear scan over the body, so
// the xref table is consulted only for the trailer; this keeps the loader
// tolerant of generators that emit slightly stale offsets.
func Load(data []byte) (*Document, error) {
	p := &bodyParser{data: data, doc: New()}
	if err := p.run(); err != nil {
		return nil, err
	}
	if len(p.doc.trailer) == 0 {
		return nil, p.errorf("no trailer dictionary found")
	}
	return p.doc, nil
}

type bodyParser struct {
	data []byte
	pos  int
	doc  *Document
}

func (p *bodyParser) errorf(format string, args ...any) error {
	return fmt.Errorf("pdf parse error at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *bodyParser) run() error {
	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			return nil
		}

		switch {
		case p.hasKeyword("xref"):
			p.consume(len("xref"))
			if err := p.skipXrefTable(); err != nil {
				return err
			}
		case p.hasKeyword("trailer"):
			p.consume(len("trailer"))
			obj, err := p.parseObject()
			if err != nil {
				return err
			}
			dict, ok := obj.(Dict)
			if !ok {
				return p.errorf("trailer is not a dictionary")
			}
			// later trailers win, merge preserves earlier extra keys
			for k, v := range dict {
				p.doc.trailer[k] = v
			}
		case p.hasKeyword("startxref"):
			p.consume(len("startxref"))
			if _, err := p.parseInteger(); err != nil {
				return err
			}
		default:
			if err := p.parseIndirectObject(); err != nil {
				return err
			}
		}
	}
}

func (p *bodyParser) parseIndirectObject() error {
	num, err := p.parseInteger()
	if err != nil {
		return p.errorf("expected object number: %v", err)
	}
	if _, err := p.parseInteger(); err != nil {
		return p.errorf("expected generation number for object %d: %v", num, err)
	}
	p.skipSpace()
	if !p.hasKeyword("obj") {
		return p.errorf("expected `obj` keyword for object %d", num)
	}
	p.consume(len("obj"))

	obj, err := p.parseObject()
	if err != nil {
		return err
	}

	p.skipSpace()
	if p.hasKeyword("stream") {
		dict, ok := obj.(Dict)
		if !ok {
			return p.errorf("stream payload without stream dictionary in object %d", num)
		}
		data, err := p.parseStreamData(dict)
		if err != nil {
			return err
		}
		delete(dict, "Length")
		obj = Stream{Dict: dict, Data: data}
		p.skipSpace()
	}

	if !p.hasKeyword("endobj") {
		return p.errorf("expected `endobj` after object %d", num)
	}
	p.consume(len("endobj"))

	p.doc.SetObject(Ref{Num: int(num)}, obj)
	return nil
}

func (p *bodyParser) parseStreamData(dict Dict) ([]byte, error) {
	p.consume(len("stream"))
	if p.pos < len(p.data) && p.data[p.pos] == '\r' {
		p.pos++
	}
	if p.pos < len(p.data) && p.data[p.pos] == '\n' {
		p.pos++
	}

	var data []byte
	if length, ok := p.doc.Resolve(dict["Length"]).(Integer); ok && p.pos+int(length) <= len(p.data) {
		data = p.data[p.pos : p.pos+int(length)]
		p.pos += int(length)
		p.skipSpace()
	} else {
		// Length missing or unresolved yet - locate the terminator directly.
		end := bytes.Index(p.data[p.pos:], []byte("endstream"))
		if end < 0 {
			return nil, p.errorf("unterminated stream")
		}
		data = p.data[p.pos : p.pos+end]
		for len(data) > 0 && (data[len(data)-1] == '\n' || data[len(data)-1] == '\r') {
			data = data[:len(data)-1]
		}
		p.pos += end
	}

	if !p.hasKeyword("endstream") {
		return nil, p.errorf("expected `endstream`")
	}
	p.consume(len("endstream"))
	return append([]byte(nil), data...), nil
}

func (p *bodyParser) skipXrefTable() error {
	for {
		p.skipSpace()
		if p.pos >= len(p.data) || !isDigit(p.data[p.pos]) {
			return nil
		}
		if _, err := p.parseInteger(); err != nil {
			return err
		}
		count, err := p.parseInteger()
		if err != nil {
			return err
		}
		for i := int64(0); i < count; i++ {
			if _, err := p.parseInteger(); err != nil {
				return err
			}
			if _, err := p.parseInteger(); err != nil {
				return err
			}
			p.skipSpace()
			if p.pos >= len(p.data) || (p.data[p.pos] != 'n' && p.data[p.pos] != 'f') {
				return p.errorf("malformed xref entry")
			}
			p.pos++
		}
	}
}

func (p *bodyParser) parseObject() (Object, error) {
	p.skipSpace()
	if p.pos >= len(p.data) {
		return nil, p.errorf("unexpected end of input")
	}

	switch c := p.data[p.pos]; {
	case c == '<' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '<':
		return p.parseDict()
	case c == '<':
		return p.parseHexString()
	case c == '[':
		return p.parseArray()
	case c == '/':
		return p.parseName()
	case c == '(':
		return p.parseLiteralString()
	case isDigit(c) || c == '+' || c == '-' || c == '.':
		return p.parseNumberOrRef()
	case p.hasKeyword("true"):
		p.consume(len("true"))
		return Bool(true), nil
	case p.hasKeyword("false"):
		p.consume(len("false"))
		return Bool(false), nil
	case p.hasKeyword("null"):
		p.consume(len("null"))
		return Null{}, nil
	}
	return nil, p.errorf("unexpected byte %q", p.data[p.pos])
}

func (p *bodyParser) parseDict() (Object, error) {
	p.consume(2) // <<
	dict := make(Dict)
	for {
		p.skipSpace()
		if p.pos+1 < len(p.data) && p.data[p.pos] == '>' && p.data[p.pos+1] == '>' {
			p.consume(2)
			return dict, nil
		}
		if p.pos >= len(p.data) {
			return nil, p.errorf("unterminated dictionary")
		}
		key, err := p.parseName()
		if err != nil {
			return nil, err
		}
		value, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		dict[key.(Name)] = value
	}
}

func (p *bodyParser) parseArray() (Object, error) {
	p.consume(1) // [
	var arr Array
	for {
		p.skipSpace()
		if p.pos < len(p.data) && p.data[p.pos] == ']' {
			p.consume(1)
			if arr == nil {
				arr = Array{}
			}
			return arr, nil
		}
		if p.pos >= len(p.data) {
			return nil, p.errorf("unterminated array")
		}
		item, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		arr = append(arr, item)
	}
}

func (p *bodyParser) parseName() (Object, error) {
	if p.pos >= len(p.data) || p.data[p.pos] != '/' {
		return nil, p.errorf("expected name")
	}
	p.consume(1)
	var sb []byte
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isDelimiter(c) || isWhitespace(c) {
			break
		}
		if c == '#' && p.pos+2 < len(p.data) {
			if hi, err1 := hexValue(p.data[p.pos+1]); err1 == nil {
				if lo, err2 := hexValue(p.data[p.pos+2]); err2 == nil {
					sb = append(sb, hi<<4|lo)
					p.consume(3)
					continue
				}
			}
		}
		sb = append(sb, c)
		p.consume(1)
	}
	return Name(sb), nil
}

func (p *bodyParser) parseLiteralString() (Object, error) {
	p.consume(1) // (
	var sb []byte
	depth := 1
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch c {
		case '\\':
			p.consume(1)
			if p.pos >= len(p.data) {
				return nil, p.errorf("unterminated string escape")
			}
			e := p.data[p.pos]
			switch e {
			case 'n':
				sb = append(sb, '\n')
			case 'r':
				sb = append(sb, '\r')
			case 't':
				sb = append(sb, '\t')
			case 'b':
				sb = append(sb, '\b')
			case 'f':
				sb = append(sb, '\f')
			case '(', ')', '\\':
				sb = append(sb, e)
			case '\r':
				if p.pos+1 < len(p.data) && p.data[p.pos+1] == '\n' {
					p.consume(1)
				}
			case '\n':
				// line continuation, nothing emitted
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for k := 0; k < 2 && p.pos+1 < len(p.data); k++ {
						n := p.data[p.pos+1]
						if n < '0' || n > '7' {
							break
						}
						v = v*8 + int(n-'0')
						p.consume(1)
					}
					sb = append(sb, byte(v))
				} else {
					sb = append(sb, e)
				}
			}
			p.consume(1)
		case '(':
			depth++
			sb = append(sb, c)
			p.consume(1)
		case ')':
			depth--
			if depth == 0 {
				p.consume(1)
				return textString(sb), nil
			}
			sb = append(sb, c)
			p.consume(1)
		default:
			sb = append(sb, c)
			p.consume(1)
		}
	}
	return nil, p.errorf("unterminated literal string")
}

func (p *bodyParser) parseHexString() (Object, error) {
	p.consume(1) // <
	var sb []byte
	var hi byte
	havePending := false
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c == '>' {
			p.consume(1)
			if havePending {
				sb = append(sb, hi<<4)
			}
			return textString(sb), nil
		}
		if isWhitespace(c) {
			p.consume(1)
			continue
		}
		v, err := hexValue(c)
		if err != nil {
			return nil, p.errorf("invalid hex digit %q in string", c)
		}
		if havePending {
			sb = append(sb, hi<<4|v)
			havePending = false
		} else {
			hi = v
			havePending = true
		}
		p.consume(1)
	}
	return nil, p.errorf("unterminated hex string")
}

func (p *bodyParser) parseNumberOrRef() (Object, error) {
	num, isReal, err := p.scanNumber()
	if err != nil {
		return nil, err
	}
	if isReal {
		return Real(num), nil
	}

	// "N G R" lookahead turns two integers into an indirect reference
	save := p.pos
	p.skipSpace()
	if p.pos < len(p.data) && isDigit(p.data[p.pos]) {
		gen, genReal, err := p.scanNumber()
		if err == nil && !genReal {
			p.skipSpace()
			if p.hasKeyword("R") {
				p.consume(1)
				return Ref{Num: int(num), Gen: int(gen)}, nil
			}
		}
	}
	p.pos = save
	return Integer(num), nil
}

func (p *bodyParser) scanNumber() (float64, bool, error) {
	start := p.pos
	isReal := false
	if p.pos < len(p.data) && (p.data[p.pos] == '+' || p.data[p.pos] == '-') {
		p.consume(1)
	}
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isDigit(c) {
			p.consume(1)
		} else if c == '.' && !isReal {
			isReal = true
			p.consume(1)
		} else {
			break
		}
	}
	if p.pos == start {
		return 0, false, p.errorf("expected number")
	}
	v, err := strconv.ParseFloat(string(p.data[start:p.pos]), 64)
	if err != nil {
		return 0, false, p.errorf("malformed number %q", p.data[start:p.pos])
	}
	return v, isReal, nil
}

func (p *bodyParser) parseInteger() (int64, error) {
	p.skipSpace()
	v, isReal, err := p.scanNumber()
	if err != nil {
		return 0, err
	}
	if isReal {
		return 0, p.errorf("expected integer, got real")
	}
	return int64(v), nil
}

// hasKeyword reports whether the input at the current position starts with
// the keyword followed by a delimiter or whitespace.
func (p *bodyParser) hasKeyword(kw string) bool {
	if p.pos+len(kw) > len(p.data) {
		return false
	}
	if string(p.data[p.pos:p.pos+len(kw)]) != kw {
		return false
	}
	if p.pos+len(kw) == len(p.data) {
		return true
	}
	next := p.data[p.pos+len(kw)]
	return isWhitespace(next) || isDelimiter(next)
}

func (p *bodyParser) consume(n int) { p.pos += n }

func (p *bodyParser) skipSpace() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case isWhitespace(c):
			p.pos++
		case c == '%':
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
		default:
			return
		}
	}
}

// textString folds UTF-16BE strings (recognized by their byte order mark)
// back to UTF-8, so loaded text compares and re-serializes as written.
func textString(sb []byte) String {
	if len(sb) < 2 || sb[0] != 0xFE || sb[1] != 0xFF || len(sb)%2 != 0 {
		return String(sb)
	}
	units := make([]uint16, 0, (len(sb)-2)/2)
	for i := 2; i < len(sb); i += 2 {
		units = append(units, uint16(sb[i])<<8|uint16(sb[i+1]))
	}
	return String(utf16.Decode(units))
}

func isWhitespace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func hexValue(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	}
	return 0, fmt.Errorf("not a hex digit")
}
