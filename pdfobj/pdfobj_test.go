package pdfobj

import (
	"bytes"
	"testing"
)

func buildMinimalDoc(t *testing.T, pageCount int) *Document {
	t.Helper()

	d := New()
	pagesID := d.NewObjectID()

	kids := Array{}
	for i := 0; i < pageCount; i++ {
		content := d.AddObject(Stream{
			Dict: Dict{},
			Data: []byte("BT /F1 12 Tf 72 720 Td (hi) Tj ET"),
		})
		page := d.AddObject(Dict{
			"Type":     Name("Page"),
			"Parent":   pagesID,
			"MediaBox": Array{Integer(0), Integer(0), Integer(595), Integer(842)},
			"Contents": content,
		})
		kids = append(kids, page)
	}

	d.SetObject(pagesID, Dict{
		"Type":  Name("Pages"),
		"Kids":  kids,
		"Count": Integer(pageCount),
	})
	catalog := d.AddObject(Dict{
		"Type":  Name("Catalog"),
		"Pages": pagesID,
	})
	d.Trailer()["Root"] = catalog
	return d
}

func TestSaveLoadRoundtrip(t *testing.T) {
	d := buildMinimalDoc(t, 3)
	data, err := d.Bytes()
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-1.7")) {
		t.Fatalf("missing header: %q", data[:16])
	}

	loaded, err := Load(data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	pages, err := loaded.Pages()
	if err != nil {
		t.Fatalf("pages: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for n := 1; n <= 3; n++ {
		ref, ok := pages[n]
		if !ok {
			t.Fatalf("page %d missing from page map", n)
		}
		page, ok := loaded.Resolve(ref).(Dict)
		if !ok {
			t.Fatalf("page %d does not resolve to a dictionary", n)
		}
		stream, ok := loaded.Resolve(page["Contents"]).(Stream)
		if !ok {
			t.Fatalf("page %d contents missing", n)
		}
		if !bytes.Contains(stream.Data, []byte("(hi)")) {
			t.Fatalf("page %d content stream damaged: %q", n, stream.Data)
		}
	}

	catalog, _, err := loaded.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if catalog["Type"] != Name("Catalog") {
		t.Fatalf("unexpected catalog %v", catalog)
	}
}

func TestSaveIsDeterministic(t *testing.T) {
	a, err := buildMinimalDoc(t, 2).Bytes()
	if err != nil {
		t.Fatalf("save a: %v", err)
	}
	b, err := buildMinimalDoc(t, 2).Bytes()
	if err != nil {
		t.Fatalf("save b: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("identical graphs must serialize identically")
	}
}

func TestLoadObjectVariety(t *testing.T) {
	src := []byte(`%PDF-1.7
1 0 obj
<< /A [1 2.5 -3 (lit\)eral) <414243> /Nm true false null] /B << /Nested 2 0 R >> >>
endobj
2 0 obj
42
endobj
trailer
<< /Root 1 0 R >>
%%EOF
`)
	d, err := Load(src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	obj, ok := d.Object(1)
	if !ok {
		t.Fatal("object 1 missing")
	}
	dict := obj.(Dict)
	arr := dict["A"].(Array)
	if len(arr) != 9 {
		t.Fatalf("expected 9 array items, got %d: %v", len(arr), arr)
	}
	if arr[0] != Integer(1) || arr[1] != Real(2.5) || arr[2] != Integer(-3) {
		t.Fatalf("number parsing mismatch: %v", arr[:3])
	}
	if arr[3] != String("lit)eral") {
		t.Fatalf("literal string mismatch: %q", arr[3])
	}
	if arr[4] != String("ABC") {
		t.Fatalf("hex string mismatch: %q", arr[4])
	}
	if arr[5] != Name("Nm") {
		t.Fatalf("name mismatch: %v", arr[5])
	}
	nested := dict["B"].(Dict)
	if d.Resolve(nested["Nested"]) != Integer(42) {
		t.Fatalf("reference resolution failed: %v", nested["Nested"])
	}
}

func TestUnicodeTextStringRoundtrip(t *testing.T) {
	d := buildMinimalDoc(t, 1)
	info := d.AddObject(Dict{
		"Title":  String("Введение и Résumé"),
		"Author": String("plain ascii"),
	})
	d.Trailer()["Info"] = info

	data, err := d.Bytes()
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	// non-ASCII text must go out as UTF-16BE with a byte order mark, never
	// as raw UTF-8 bytes a viewer would show as mojibake
	if !bytes.Contains(data, []byte("<FEFF")) {
		t.Fatal("unicode string was not written as a UTF-16BE hex string")
	}
	if bytes.Contains(data, []byte("Введение")) {
		t.Fatal("raw UTF-8 bytes leaked into the serialized file")
	}
	if !bytes.Contains(data, []byte("(plain ascii)")) {
		t.Fatal("ASCII strings must stay literal")
	}

	loaded, err := Load(data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := loaded.Resolve(loaded.Trailer()["Info"]).(Dict)
	if got["Title"] != String("Введение и Résumé") {
		t.Fatalf("title did not survive the roundtrip: %q", got["Title"])
	}

	// writing the loaded graph again must not re-mangle anything
	again, err := loaded.Bytes()
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Fatal("load/save must be idempotent for unicode strings")
	}
}

func TestBinaryStringKeepsBytes(t *testing.T) {
	id := String([]byte{0x01, 0xAB, 0xCD, 0x00, 0x7F, 0x80})
	d := buildMinimalDoc(t, 1)
	d.Trailer()["ID"] = Array{id, id}

	data, err := d.Bytes()
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	arr := loaded.Trailer()["ID"].(Array)
	if arr[0] != id {
		t.Fatalf("binary string changed: % X", arr[0])
	}
}

func TestCatalogErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		d := New()
		if _, _, err := d.Catalog(); err == nil {
			t.Fatal("expected missing root error")
		}
	})

	t.Run("catalog not a dictionary", func(t *testing.T) {
		d := New()
		bad := d.AddObject(Integer(7))
		d.Trailer()["Root"] = bad
		if _, _, err := d.Catalog(); err != ErrInvalidCatalog {
			t.Fatalf("expected ErrInvalidCatalog, got %v", err)
		}
	})
}

func TestNewObjectIDTwoStepAllocation(t *testing.T) {
	d := New()
	first := d.NewObjectID()
	second := d.NewObjectID()
	if first.Num == second.Num {
		t.Fatal("allocated identifiers must be distinct")
	}
	d.SetObject(second, Name("Later"))
	d.SetObject(first, Name("Earlier"))
	if obj, _ := d.Object(first.Num); obj != Name("Earlier") {
		t.Fatalf("unexpected object %v", obj)
	}
}
