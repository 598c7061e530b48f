package pdfobj

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

// Save serializes the graph as a classic PDF file: header, body objects in
// ascending number order, xref table and trailer. Output is deterministic
// for a given graph.
func (d *Document) Save(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	// binary detection comment, same purpose as in every generator
	buf.Write([]byte{'%', 0xe2, 0xe3, 0xcf, 0xd3, '\n'})

	nums := make([]int, 0, len(d.objects))
	for num := range d.objects {
		nums = append(nums, num)
	}
	sort.Ints(nums)

	offsets := make(map[int]int, len(nums))
	for _, num := range nums {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", num)
		writeObject(&buf, d.objects[num])
		buf.WriteString("\nendobj\n")
	}

	xrefOffset := buf.Len()
	maxNum := 0
	if len(nums) > 0 {
		maxNum = nums[len(nums)-1]
	}
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num <= maxNum; num++ {
		if off, ok := offsets[num]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}

	trailer := make(Dict, len(d.trailer)+1)
	for k, v := range d.trailer {
		trailer[k] = v
	}
	trailer["Size"] = Integer(maxNum + 1)
	delete(trailer, "Prev")

	buf.WriteString("trailer\n")
	writeObject(&buf, trailer)
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err := w.Write(buf.Bytes())
	return err
}

// Bytes serializes the graph into a fresh byte slice.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeObject(buf *bytes.Buffer, obj Object) {
	switch v := obj.(type) {
	case nil, Null:
		buf.WriteString("null")
	case Bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Integer:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case Real:
		buf.WriteString(formatReal(float64(v)))
	case Name:
		buf.WriteByte('/')
		writeNameBytes(buf, string(v))
	case String:
		writeString(buf, string(v))
	case Ref:
		fmt.Fprintf(buf, "%d %d R", v.Num, v.Gen)
	case Array:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(' ')
			}
			writeObject(buf, item)
		}
		buf.WriteByte(']')
	case Dict:
		writeDict(buf, v)
	case Stream:
		dict := make(Dict, len(v.Dict)+1)
		for k, val := range v.Dict {
			dict[k] = val
		}
		dict["Length"] = Integer(len(v.Data))
		writeDict(buf, dict)
		buf.WriteString("\nstream\n")
		buf.Write(v.Data)
		buf.WriteString("\nendstream")
	default:
		// all Object implementations are covered above
		panic(fmt.Sprintf("pdfobj: cannot serialize %T", obj))
	}
}

func writeDict(buf *bytes.Buffer, d Dict) {
	buf.WriteString("<<")
	for i, key := range d.sortedKeys() {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteByte('/')
		writeNameBytes(buf, string(key))
		buf.WriteByte(' ')
		writeObject(buf, d[key])
	}
	buf.WriteString(">>")
}

func writeNameBytes(buf *bytes.Buffer, name string) {
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c <= ' ' || c > '~' || isDelimiter(c) || c == '#' {
			fmt.Fprintf(buf, "#%02X", c)
			continue
		}
		buf.WriteByte(c)
	}
}

// writeString picks the representation a viewer can display: plain ASCII
// goes out as a literal string, other valid UTF-8 as a UTF-16BE hex string
// with a byte order mark. Strings that are not UTF-8 carry binary payloads
// (such as the file identifier) and keep their bytes verbatim.
func writeString(buf *bytes.Buffer, s string) {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] > '~' {
			ascii = false
			break
		}
	}
	if ascii || !utf8.ValidString(s) {
		writeLiteralString(buf, s)
		return
	}
	buf.WriteString("<FEFF")
	for _, unit := range utf16.Encode([]rune(s)) {
		fmt.Fprintf(buf, "%04X", unit)
	}
	buf.WriteByte('>')
}

func writeLiteralString(buf *bytes.Buffer, s string) {
	buf.WriteByte('(')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\n':
			buf.WriteString("\\n")
		case '\r':
			buf.WriteString("\\r")
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(')')
}

func formatReal(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
