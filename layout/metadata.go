package layout

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/beevik/etree"

	"pdg/misc"
	"pdg/pdfobj"
)

// Metadata is the document description written to the Info dictionary and
// the XMP packet.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
}

func producerString() string {
	return fmt.Sprintf("%s %s", misc.GetAppName(), misc.GetVersion())
}

func pdfDate(t time.Time) string {
	return t.UTC().Format("D:20060102150405Z")
}

// writeInfo stores the Info dictionary and wires it into the trailer.
func writeInfo(pdf *pdfobj.Document, meta Metadata, now time.Time) {
	info := pdfobj.Dict{
		"Producer":     pdfobj.String(producerString()),
		"CreationDate": pdfobj.String(pdfDate(now)),
		"ModDate":      pdfobj.String(pdfDate(now)),
	}
	if meta.Title != "" {
		info["Title"] = pdfobj.String(meta.Title)
	}
	if meta.Author != "" {
		info["Author"] = pdfobj.String(meta.Author)
	}
	if meta.Subject != "" {
		info["Subject"] = pdfobj.String(meta.Subject)
	}
	if meta.Keywords != "" {
		info["Keywords"] = pdfobj.String(meta.Keywords)
	}
	if meta.Creator != "" {
		info["Creator"] = pdfobj.String(meta.Creator)
	}
	pdf.Trailer()["Info"] = pdf.AddObject(info)
}

// writeID stores the two-part file identifier in the trailer.
func writeID(pdf *pdfobj.Document, id [16]byte) {
	s := pdfobj.String(hex.EncodeToString(id[:]))
	pdf.Trailer()["ID"] = pdfobj.Array{s, s}
}

// xmpPacket builds the XMP metadata stream content.
func xmpPacket(meta Metadata, now time.Time, id [16]byte) []byte {
	d := etree.NewDocument()
	d.CreateProcInst("xpacket", `begin="" id="W5M0MpCehiHzreSzNTczkc9d"`)

	x := d.CreateElement("x:xmpmeta")
	x.CreateAttr("xmlns:x", "adobe:ns:meta/")
	rdf := x.CreateElement("rdf:RDF")
	rdf.CreateAttr("xmlns:rdf", "http://www.w3.org/1999/02/22-rdf-syntax-ns#")

	desc := rdf.CreateElement("rdf:Description")
	desc.CreateAttr("rdf:about", "")
	desc.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	desc.CreateAttr("xmlns:xmp", "http://ns.adobe.com/xap/1.0/")
	desc.CreateAttr("xmlns:pdf", "http://ns.adobe.com/pdf/1.3/")
	desc.CreateAttr("xmlns:xmpMM", "http://ns.adobe.com/xap/1.0/mm/")

	if meta.Title != "" {
		alt := desc.CreateElement("dc:title").CreateElement("rdf:Alt")
		li := alt.CreateElement("rdf:li")
		li.CreateAttr("xml:lang", "x-default")
		li.SetText(meta.Title)
	}
	if meta.Author != "" {
		seq := desc.CreateElement("dc:creator").CreateElement("rdf:Seq")
		seq.CreateElement("rdf:li").SetText(meta.Author)
	}
	if meta.Subject != "" {
		alt := desc.CreateElement("dc:description").CreateElement("rdf:Alt")
		li := alt.CreateElement("rdf:li")
		li.CreateAttr("xml:lang", "x-default")
		li.SetText(meta.Subject)
	}

	stamp := now.UTC().Format(time.RFC3339)
	desc.CreateElement("xmp:CreateDate").SetText(stamp)
	desc.CreateElement("xmp:ModifyDate").SetText(stamp)
	desc.CreateElement("xmp:MetadataDate").SetText(stamp)
	desc.CreateElement("pdf:Producer").SetText(producerString())
	desc.CreateElement("xmpMM:DocumentID").SetText("uuid:" + hex.EncodeToString(id[:]))

	d.CreateProcInst("xpacket", `end="w"`)
	d.Indent(2)
	out, err := d.WriteToBytes()
	if err != nil {
		// etree only fails on writer errors, which a byte buffer cannot produce.
		return nil
	}
	return out
}

// writeXMP attaches the XMP packet to the catalog.
func writeXMP(pdf *pdfobj.Document, catalog pdfobj.Dict, meta Metadata, now time.Time, id [16]byte) {
	packet := xmpPacket(meta, now, id)
	if packet == nil {
		return
	}
	catalog["Metadata"] = pdf.AddObject(pdfobj.Stream{
		Dict: pdfobj.Dict{
			"Type":    pdfobj.Name("Metadata"),
			"Subtype": pdfobj.Name("XML"),
		},
		Data: packet,
	})
}
