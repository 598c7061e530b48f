package pdfobj

import (
	"errors"
	"fmt"
)

// Document is a mutable object graph together with its trailer dictionary.
// It is not safe for concurrent use.
type Document struct {
	objects map[int]Object
	trailer Dict
	maxNum  int
}

// New creates an empty document with an empty trailer.
func New() *Document {
	return &Document{
		objects: make(map[int]Object),
		trailer: make(Dict),
	}
}

// Errors reported while navigating the graph.
var (
	ErrMissingRoot    = errors.New("trailer carries no Root reference")
	ErrInvalidCatalog = errors.New("catalog object is not a dictionary")
)

// Trailer returns the trailer dictionary. Size and startxref bookkeeping is
// recomputed at serialization time, everything else is preserved.
func (d *Document) Trailer() Dict { return d.trailer }

// NewObjectID allocates a fresh object number without storing an object yet.
// Builders that wire doubly linked structures allocate all identifiers first
// and fill the objects in afterwards.
func (d *Document) NewObjectID() Ref {
	d.maxNum++
	return Ref{Num: d.maxNum}
}

// AddObject stores obj under a fresh number and returns the reference.
func (d *Document) AddObject(obj Object) Ref {
	ref := d.NewObjectID()
	d.objects[ref.Num] = obj
	return ref
}

// SetObject stores obj under a previously allocated reference, replacing any
// existing object with the same number.
func (d *Document) SetObject(ref Ref, obj Object) {
	if ref.Num > d.maxNum {
		d.maxNum = ref.Num
	}
	d.objects[ref.Num] = obj
}

// Object returns the object stored under num.
func (d *Document) Object(num int) (Object, bool) {
	obj, ok := d.objects[num]
	return obj, ok
}

// Resolve follows indirect references until a direct object is reached.
// Unresolvable references yield Null.
func (d *Document) Resolve(obj Object) Object {
	for i := 0; i < 32; i++ {
		ref, ok := obj.(Ref)
		if !ok {
			return obj
		}
		next, found := d.objects[ref.Num]
		if !found {
			return Null{}
		}
		obj = next
	}
	return Null{}
}

// Catalog returns the document catalog dictionary and its reference.
func (d *Document) Catalog() (Dict, Ref, error) {
	rootRef, ok := d.trailer["Root"].(Ref)
	if !ok {
		return nil, Ref{}, ErrMissingRoot
	}
	obj, ok := d.objects[rootRef.Num]
	if !ok {
		return nil, Ref{}, fmt.Errorf("%w: object %d not present", ErrMissingRoot, rootRef.Num)
	}
	dict, ok := obj.(Dict)
	if !ok {
		return nil, Ref{}, ErrInvalidCatalog
	}
	return dict, rootRef, nil
}

// Pages returns the mapping from 1-indexed page number to page object
// reference, in page tree order.
func (d *Document) Pages() (map[int]Ref, error) {
	catalog, _, err := d.Catalog()
	if err != nil {
		return nil, err
	}
	pagesRef, ok := catalog["Pages"].(Ref)
	if !ok {
		return nil, errors.New("catalog carries no Pages reference")
	}

	pages := make(map[int]Ref)
	number := 0
	visited := make(map[int]bool)

	var walk func(ref Ref) error
	walk = func(ref Ref) error {
		if visited[ref.Num] {
			return fmt.Errorf("page tree cycle through object %d", ref.Num)
		}
		visited[ref.Num] = true

		node, ok := d.Resolve(ref).(Dict)
		if !ok {
			return fmt.Errorf("page tree node %d is not a dictionary", ref.Num)
		}
		switch node["Type"] {
		case Name("Pages"):
			kids, _ := d.Resolve(node["Kids"]).(Array)
			for _, kid := range kids {
				kidRef, ok := kid.(Ref)
				if !ok {
					return fmt.Errorf("page tree node %d has a direct kid", ref.Num)
				}
				if err := walk(kidRef); err != nil {
					return err
				}
			}
		case Name("Page"):
			number++
			pages[number] = ref
		default:
			return fmt.Errorf("page tree node %d has unexpected type %v", ref.Num, node["Type"])
		}
		return nil
	}

	if err := walk(pagesRef); err != nil {
		return nil, err
	}
	return pages, nil
}
