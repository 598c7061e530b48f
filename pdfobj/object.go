// Package pdfobj implements the low-level object graph of a PDF file: a
// mutable collection of numbered objects (dictionaries, arrays, names,
// strings, numbers, references and streams) that can be loaded from bytes,
// edited and serialized back. It understands just enough of the container
// format to let higher layers generate documents and post-process already
// rendered ones; it is not a general purpose PDF toolkit.
package pdfobj

import "sort"

// Object is any value that can appear in the object graph.
type Object interface {
	isObject()
}

// Name is a PDF name object, stored without the leading slash.
type Name string

// Integer is a PDF integer number.
type Integer int64

// Real is a PDF real number.
type Real float64

// String is a PDF text string, serialized as a literal string with escapes.
type String string

// Bool is a PDF boolean.
type Bool bool

// Null is the PDF null object.
type Null struct{}

// Array is an ordered sequence of objects.
type Array []Object

// Dict maps names to objects. Serialization orders keys lexicographically so
// output is deterministic.
type Dict map[Name]Object

// Ref is an indirect reference to a numbered object.
type Ref struct {
	Num int
	Gen int
}

// Stream is a dictionary with an attached byte payload. The /Length entry is
// maintained automatically during serialization.
type Stream struct {
	Dict Dict
	Data []byte
}

func (Name) isObject()    {}
func (Integer) isObject() {}
func (Real) isObject()    {}
func (String) isObject()  {}
func (Bool) isObject()    {}
func (Null) isObject()    {}
func (Array) isObject()   {}
func (Dict) isObject()    {}
func (Ref) isObject()     {}
func (Stream) isObject()  {}

// sortedKeys returns dictionary keys in serialization order.
func (d Dict) sortedKeys() []Name {
	keys := make([]Name, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// DictOf is a convenience constructor used by builders that want literal
// key/value sequences without map composite syntax noise.
func DictOf(pairs ...any) Dict {
	d := make(Dict, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		d[pairs[i].(Name)] = pairs[i+1].(Object)
	}
	return d
}
