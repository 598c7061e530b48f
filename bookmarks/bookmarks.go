// Package bookmarks adds a flat outline to an already rendered artifact.
// Entries point at the first page of each section; sections whose page was
// never resolved are skipped.
package bookmarks

import (
	"fmt"

	"pdg/doc"
	"pdg/pdfobj"
)

// MissingPageError reports a section whose recorded page does not exist in
// the artifact's page tree.
type MissingPageError struct {
	SectionIndex int
	PageNumber   int
}

func (e *MissingPageError) Error() string {
	return fmt.Sprintf("section %d points at page %d which is not in the artifact", e.SectionIndex, e.PageNumber)
}

// Apply loads the artifact, builds one outline entry per section with a
// resolved page and returns the re-serialized bytes. When no section has a
// resolved page the input is returned unchanged. A failed application never
// returns partially modified bytes.
func Apply(artifact []byte, sections []doc.Section, pages []*int) ([]byte, error) {
	if len(sections) != len(pages) {
		return nil, fmt.Errorf("got %d sections but %d page entries", len(sections), len(pages))
	}

	type entry struct {
		index int
		title string
		id    string
		page  int
	}
	var entries []entry
	for i, p := range pages {
		if p == nil {
			continue
		}
		entries = append(entries, entry{
			index: i,
			title: sections[i].Title(),
			id:    sections[i].Identifier(),
			page:  *p,
		})
	}
	if len(entries) == 0 {
		return artifact, nil
	}

	pdf, err := pdfobj.Load(artifact)
	if err != nil {
		return nil, fmt.Errorf("parsing artifact: %w", err)
	}
	catalog, _, err := pdf.Catalog()
	if err != nil {
		return nil, err
	}
	pageMap, err := pdf.Pages()
	if err != nil {
		return nil, fmt.Errorf("walking page tree: %w", err)
	}

	// Resolve every target before mutating anything.
	targets := make([]pdfobj.Ref, len(entries))
	for i, e := range entries {
		ref, ok := pageMap[e.page]
		if !ok {
			return nil, &MissingPageError{SectionIndex: e.index, PageNumber: e.page}
		}
		targets[i] = ref
	}

	// Allocate all identifiers first, then wire the doubly linked list; the
	// entries reference each other and their parent by number.
	rootID := pdf.NewObjectID()
	ids := make([]pdfobj.Ref, len(entries))
	for i := range entries {
		ids[i] = pdf.NewObjectID()
	}

	for i, e := range entries {
		item := pdfobj.Dict{
			"Title":  pdfobj.String(e.title),
			"Parent": rootID,
			"Dest":   pdfobj.Array{targets[i], pdfobj.Name("Fit")},
		}
		if e.id != "" {
			item["NM"] = pdfobj.String(e.id)
		}
		if i > 0 {
			item["Prev"] = ids[i-1]
		}
		if i < len(entries)-1 {
			item["Next"] = ids[i+1]
		}
		pdf.SetObject(ids[i], item)
	}

	pdf.SetObject(rootID, pdfobj.Dict{
		"Type":  pdfobj.Name("Outlines"),
		"First": ids[0],
		"Last":  ids[len(ids)-1],
		"Count": pdfobj.Integer(len(ids)),
	})
	catalog["Outlines"] = rootID

	out, err := pdf.Bytes()
	if err != nil {
		return nil, fmt.Errorf("serializing artifact: %w", err)
	}
	return out, nil
}
