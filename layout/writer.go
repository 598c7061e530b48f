package layout

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"strconv"

	"pdg/doc"
	"pdg/fonts"
	"pdg/pdfobj"
	"pdg/utils/images"
)

// docWriter accumulates pages and shared resources into a PDF object graph.
type docWriter struct {
	pdf      *pdfobj.Document
	pagesID  pdfobj.Ref
	paper    Size
	pageRefs []pdfobj.Ref

	fontRefs  map[*fonts.Variant]fontRes
	imageRefs map[*images.Decoded]imageRes
}

type fontRes struct {
	name pdfobj.Name
	ref  pdfobj.Ref
}

type imageRes struct {
	name pdfobj.Name
	ref  pdfobj.Ref
}

func newDocWriter(paper Size) *docWriter {
	pdf := pdfobj.New()
	return &docWriter{
		pdf:       pdf,
		pagesID:   pdf.NewObjectID(),
		paper:     paper,
		fontRefs:  make(map[*fonts.Variant]fontRes),
		imageRefs: make(map[*images.Decoded]imageRes),
	}
}

// pageWriter builds the content stream and resource set of a single page.
type pageWriter struct {
	doc        *docWriter
	content    bytes.Buffer
	fontsUsed  pdfobj.Dict
	imagesUsed pdfobj.Dict
}

func (w *docWriter) newPage() *pageWriter {
	return &pageWriter{
		doc:        w,
		fontsUsed:  make(pdfobj.Dict),
		imagesUsed: make(pdfobj.Dict),
	}
}

// close finalizes the page: the content stream and page dictionary are added
// to the graph and the page joins the tree.
func (pw *pageWriter) close() {
	w := pw.doc
	contents := w.pdf.AddObject(pdfobj.Stream{Dict: pdfobj.Dict{}, Data: pw.content.Bytes()})

	resources := pdfobj.Dict{}
	if len(pw.fontsUsed) > 0 {
		resources["Font"] = pw.fontsUsed
	}
	if len(pw.imagesUsed) > 0 {
		resources["XObject"] = pw.imagesUsed
	}

	page := pdfobj.Dict{
		"Type":     pdfobj.Name("Page"),
		"Parent":   w.pagesID,
		"MediaBox": pdfobj.Array{pdfobj.Integer(0), pdfobj.Integer(0), pdfobj.Real(w.paper.W.Pt()), pdfobj.Real(w.paper.H.Pt())},
		"Contents": contents,
	}
	if len(resources) > 0 {
		page["Resources"] = resources
	}
	w.pageRefs = append(w.pageRefs, w.pdf.AddObject(page))
}

// printRun emits one text showing operation and returns its advance.
func (pw *pageWriter) printRun(pos Position, style Style, text string, wordSpacingPt float64) Mm {
	variant := style.Variant()
	res := pw.doc.fontResource(variant)
	pw.fontsUsed[res.name] = res.ref

	encoded := fonts.Encode(text)
	advancePt := variant.TextWidthPt(encoded, style.SizePt())
	if wordSpacingPt != 0 {
		advancePt += wordSpacingPt * float64(bytes.Count(encoded, []byte{' '}))
	}

	x := pos.X.Pt()
	y := (pw.doc.paper.H - pos.Y).Pt()
	r, g, b := styleRGB(style)

	pw.content.WriteString("BT\n")
	fmt.Fprintf(&pw.content, "/%s %s Tf\n", res.name, fmtNum(style.SizePt()))
	fmt.Fprintf(&pw.content, "%s %s %s rg\n", fmtNum(r), fmtNum(g), fmtNum(b))
	fmt.Fprintf(&pw.content, "%s Tw\n", fmtNum(wordSpacingPt))
	fmt.Fprintf(&pw.content, "%s %s Td\n", fmtNum(x), fmtNum(y))
	pw.content.WriteByte('(')
	pw.content.Write(escapeText(encoded))
	pw.content.WriteString(") Tj\nET\n")

	advance := PtToMm(advancePt)
	if style.IsUnderlined() {
		offset := PtToMm(style.SizePt() * 0.1)
		thickness := style.SizePt() / 14
		lineY := pos.Y + offset
		pw.drawLine(Position{X: pos.X, Y: lineY}, Position{X: pos.X + advance, Y: lineY}, thickness, style)
	}
	return advance
}

func (pw *pageWriter) drawLine(from, to Position, widthPt float64, style Style) {
	r, g, b := styleRGB(style)
	h := pw.doc.paper.H
	fmt.Fprintf(&pw.content, "q\n%s w\n%s %s %s RG\n%s %s m\n%s %s l\nS\nQ\n",
		fmtNum(widthPt), fmtNum(r), fmtNum(g), fmtNum(b),
		fmtNum(from.X.Pt()), fmtNum((h-from.Y).Pt()),
		fmtNum(to.X.Pt()), fmtNum((h-to.Y).Pt()))
}

func (pw *pageWriter) drawImage(img *images.Decoded, pos Position, size Size) error {
	res, err := pw.doc.imageResource(img)
	if err != nil {
		return err
	}
	pw.imagesUsed[res.name] = res.ref

	// cm maps the unit square to the placement rectangle; PDF images are
	// anchored at their bottom left corner.
	x := pos.X.Pt()
	y := (pw.doc.paper.H - pos.Y - size.H).Pt()
	fmt.Fprintf(&pw.content, "q\n%s 0 0 %s %s %s cm\n/%s Do\nQ\n",
		fmtNum(size.W.Pt()), fmtNum(size.H.Pt()), fmtNum(x), fmtNum(y), res.name)
	return nil
}

func (w *docWriter) fontResource(v *fonts.Variant) fontRes {
	if res, ok := w.fontRefs[v]; ok {
		return res
	}
	name := pdfobj.Name(fmt.Sprintf("F%d", len(w.fontRefs)+1))

	var ref pdfobj.Ref
	if v.IsEmbedded() {
		ref = w.embedTrueType(v)
	} else {
		ref = w.pdf.AddObject(pdfobj.Dict{
			"Type":     pdfobj.Name("Font"),
			"Subtype":  pdfobj.Name("Type1"),
			"BaseFont": pdfobj.Name(v.Name()),
			"Encoding": pdfobj.Name("WinAnsiEncoding"),
		})
	}
	res := fontRes{name: name, ref: ref}
	w.fontRefs[v] = res
	return res
}

func (w *docWriter) embedTrueType(v *fonts.Variant) pdfobj.Ref {
	program := deflate(v.Program())
	fileRef := w.pdf.AddObject(pdfobj.Stream{
		Dict: pdfobj.Dict{
			"Filter":  pdfobj.Name("FlateDecode"),
			"Length1": pdfobj.Integer(len(v.Program())),
		},
		Data: program,
	})

	flags := 32 // nonsymbolic
	if v.ItalicAngle() != 0 {
		flags |= 64
	}
	bbox := v.BBox()
	descriptor := w.pdf.AddObject(pdfobj.Dict{
		"Type":        pdfobj.Name("FontDescriptor"),
		"FontName":    pdfobj.Name(v.Name()),
		"Flags":       pdfobj.Integer(flags),
		"FontBBox":    pdfobj.Array{pdfobj.Integer(bbox[0]), pdfobj.Integer(bbox[1]), pdfobj.Integer(bbox[2]), pdfobj.Integer(bbox[3])},
		"ItalicAngle": pdfobj.Real(v.ItalicAngle()),
		"Ascent":      pdfobj.Integer(v.Ascent()),
		"Descent":     pdfobj.Integer(v.Descent()),
		"CapHeight":   pdfobj.Integer(v.CapHeight()),
		"StemV":       pdfobj.Integer(80),
		"FontFile2":   fileRef,
	})

	widths := make(pdfobj.Array, 0, 224)
	for code := 32; code < 256; code++ {
		widths = append(widths, pdfobj.Integer(v.GlyphWidth(byte(code))))
	}
	return w.pdf.AddObject(pdfobj.Dict{
		"Type":           pdfobj.Name("Font"),
		"Subtype":        pdfobj.Name("TrueType"),
		"BaseFont":       pdfobj.Name(v.Name()),
		"FirstChar":      pdfobj.Integer(32),
		"LastChar":       pdfobj.Integer(255),
		"Widths":         widths,
		"Encoding":       pdfobj.Name("WinAnsiEncoding"),
		"FontDescriptor": descriptor,
	})
}

func (w *docWriter) imageResource(img *images.Decoded) (imageRes, error) {
	if res, ok := w.imageRefs[img]; ok {
		return res, nil
	}
	name := pdfobj.Name(fmt.Sprintf("Im%d", len(w.imageRefs)+1))

	dict := pdfobj.Dict{
		"Type":             pdfobj.Name("XObject"),
		"Subtype":          pdfobj.Name("Image"),
		"Width":            pdfobj.Integer(img.Width()),
		"Height":           pdfobj.Integer(img.Height()),
		"BitsPerComponent": pdfobj.Integer(8),
	}

	var data []byte
	if img.JPEG != nil {
		dict["Filter"] = pdfobj.Name("DCTDecode")
		if img.JPEGGray {
			dict["ColorSpace"] = pdfobj.Name("DeviceGray")
		} else {
			dict["ColorSpace"] = pdfobj.Name("DeviceRGB")
		}
		data = img.JPEG
	} else {
		dict["Filter"] = pdfobj.Name("FlateDecode")
		dict["ColorSpace"] = pdfobj.Name("DeviceRGB")
		data = deflate(flattenRGB(img))
	}

	ref := w.pdf.AddObject(pdfobj.Stream{Dict: dict, Data: data})
	res := imageRes{name: name, ref: ref}
	w.imageRefs[img] = res
	return res, nil
}

// flattenRGB composites the pixels over white and drops the alpha channel.
func flattenRGB(img *images.Decoded) []byte {
	px := img.Pixels
	w, h := img.Width(), img.Height()
	out := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := px.Pix[y*px.Stride : y*px.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			a := int(row[x+3])
			for c := 0; c < 3; c++ {
				v := (int(row[x+c])*a + 255*(255-a)) / 255
				out = append(out, byte(v))
			}
		}
	}
	return out
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return buf.Bytes()
}

func styleRGB(s Style) (float64, float64, float64) {
	c, ok := s.Color()
	if !ok {
		c = doc.Color{}
	}
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

// fmtNum formats content stream operands with stable two decimal precision.
func fmtNum(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

func escapeText(encoded []byte) []byte {
	out := make([]byte, 0, len(encoded))
	for _, c := range encoded {
		switch c {
		case '(', ')', '\\':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		default:
			out = append(out, c)
		}
	}
	return out
}
