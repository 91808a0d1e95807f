package pdf

import (
	"encoding/hex"
	"fmt"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// installOutline replaces the context's outline with the given forest,
// building the /Outlines dictionary chain object by object. Sibling order is
// the forest's order; page order plays no part. Every node is written open,
// targeting its page with an /XYZ destination that inherits the viewer's
// current position and zoom.
func installOutline(ctx *model.Context, forest []outlineEntry) error {
	pageRefs := collectPageRefs(ctx)

	rootDict, err := ctx.Catalog()
	if err != nil {
		return err
	}

	outlinesDict := types.Dict{"Type": types.Name("Outlines")}
	outlinesRef, err := ctx.IndRefForNewObject(outlinesDict)
	if err != nil {
		return err
	}

	total, first, last, err := appendOutlineLevel(ctx, pageRefs, forest, *outlinesRef)
	if err != nil {
		return err
	}
	outlinesDict["First"] = *first
	outlinesDict["Last"] = *last
	outlinesDict["Count"] = types.Integer(total)

	rootDict["Outlines"] = *outlinesRef
	return nil
}

// appendOutlineLevel writes one sibling chain plus its descendants and
// returns the number of nodes written and the first and last sibling refs.
func appendOutlineLevel(ctx *model.Context, pageRefs []types.IndirectRef, entries []outlineEntry, parent types.IndirectRef) (int, *types.IndirectRef, *types.IndirectRef, error) {
	var (
		count    int
		first    *types.IndirectRef
		prevRef  *types.IndirectRef
		prevDict types.Dict
	)

	for _, e := range entries {
		if e.pageIndex < 0 || e.pageIndex >= len(pageRefs) {
			return 0, nil, nil, fmt.Errorf("bookmark %q targets page %d of a %d page document", e.title, e.pageIndex+1, len(pageRefs))
		}

		d := types.Dict{
			"Title":  titleHexLiteral(e.title),
			"Parent": parent,
			"Dest":   types.Array{pageRefs[e.pageIndex], types.Name("XYZ"), nil, nil, nil},
		}
		ref, err := ctx.IndRefForNewObject(d)
		if err != nil {
			return 0, nil, nil, err
		}
		count++

		if first == nil {
			first = ref
		}
		if prevRef != nil {
			prevDict["Next"] = *ref
			d["Prev"] = *prevRef
		}

		if len(e.kids) > 0 {
			kidCount, kidFirst, kidLast, err := appendOutlineLevel(ctx, pageRefs, e.kids, *ref)
			if err != nil {
				return 0, nil, nil, err
			}
			d["First"] = *kidFirst
			d["Last"] = *kidLast
			d["Count"] = types.Integer(kidCount)
			count += kidCount
		}

		prevRef, prevDict = ref, d
	}

	return count, first, prevRef, nil
}

// titleHexLiteral encodes a title as a UTF-16BE hex string with BOM, the
// text string form every reader accepts regardless of the title's alphabet.
func titleHexLiteral(s string) types.HexLiteral {
	units := utf16.Encode([]rune(s))
	b := make([]byte, 0, 2+2*len(units))
	b = append(b, 0xFE, 0xFF)
	for _, u := range units {
		b = append(b, byte(u>>8), byte(u))
	}
	return types.HexLiteral(hex.EncodeToString(b))
}
