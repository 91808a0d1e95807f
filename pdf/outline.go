package pdf

import (
	"fmt"
	"log"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// outlineEntry is one node of an outline forest: a title and zero-based
// page position, with children nested under the node that reached them.
type outlineEntry struct {
	title     string
	pageIndex int
	kids      []outlineEntry
}

// ExistingBookmarks lists the source document's outline as formatted lines,
// pre-order depth-first, siblings in source order. Each line is
// "<title>  <1-based page>" indented one space per tree level. The walk is
// best-effort: malformed entries are logged and omitted, never raised.
func (d *Document) ExistingBookmarks() []string {
	lines := []string{}
	var format func(entries []outlineEntry, depth int)
	format = func(entries []outlineEntry, depth int) {
		for _, e := range entries {
			lines = append(lines, fmt.Sprintf("%s%s  %d", strings.Repeat(" ", depth), e.title, e.pageIndex+1))
			format(e.kids, depth+1)
		}
	}
	format(d.sourceOutline(), 0)
	return lines
}

// sourceOutline extracts the source document's outline tree. Entries that
// cannot be resolved are logged and dropped; their children, if any, are
// spliced into the failed entry's place.
func (d *Document) sourceOutline() []outlineEntry {
	rootDict, err := d.reader.Catalog()
	if err != nil {
		log.Printf("outline: no document catalog: %v", err)
		return nil
	}

	obj, found := rootDict.Find("Outlines")
	if !found {
		return nil
	}
	outlines, err := d.reader.DereferenceDict(obj)
	if err != nil {
		log.Printf("outline: cannot resolve /Outlines: %v", err)
		return nil
	}

	visited := map[int]bool{}
	return d.walkOutlineLevel(outlines.IndirectRefEntry("First"), visited)
}

// walkOutlineLevel walks one sibling chain via /Next, descending into each
// item's /First chain for its children.
func (d *Document) walkOutlineLevel(first *types.IndirectRef, visited map[int]bool) []outlineEntry {
	var entries []outlineEntry

	for ref := first; ref != nil; {
		objNr := ref.ObjectNumber.Value()
		if visited[objNr] {
			log.Printf("outline: cycle at object %d", objNr)
			break
		}
		visited[objNr] = true

		item, err := d.reader.DereferenceDict(*ref)
		if err != nil {
			log.Printf("outline: cannot resolve item %d: %v", objNr, err)
			break
		}

		kids := d.walkOutlineLevel(item.IndirectRefEntry("First"), visited)

		entry, err := d.resolveOutlineItem(item)
		if err != nil {
			log.Printf("outline: skipping item %d: %v", objNr, err)
			entries = append(entries, kids...)
		} else {
			entry.kids = kids
			entries = append(entries, entry)
		}

		ref = item.IndirectRefEntry("Next")
	}

	return entries
}

func (d *Document) resolveOutlineItem(item types.Dict) (outlineEntry, error) {
	title, err := d.itemTitle(item)
	if err != nil {
		return outlineEntry{}, err
	}
	pageIndex, err := d.itemPageIndex(item)
	if err != nil {
		return outlineEntry{}, err
	}
	return outlineEntry{title: strings.TrimSpace(title), pageIndex: pageIndex}, nil
}

func (d *Document) itemTitle(item types.Dict) (string, error) {
	obj, found := item.Find("Title")
	if !found {
		return "", fmt.Errorf("no /Title entry")
	}
	return d.textString(obj)
}

// itemPageIndex resolves an outline item's target to a zero-based page
// position, via /Dest or a GoTo action's /D. Named destinations are looked
// up in the document's destination name tree. Page object references go
// through the page index; numeric targets are taken as positions directly.
func (d *Document) itemPageIndex(item types.Dict) (int, error) {
	obj, found := item.Find("Dest")
	if !found {
		action, err := d.reader.DereferenceDict(item["A"])
		if err != nil {
			return 0, fmt.Errorf("no /Dest and no usable /A action")
		}
		if obj, found = action.Find("D"); !found {
			return 0, fmt.Errorf("action has no /D destination")
		}
	}

	obj, err := d.reader.Dereference(obj)
	if err != nil {
		return 0, err
	}

	var dest types.Array
	switch obj.(type) {
	case types.StringLiteral, types.HexLiteral, types.Name:
		name, err := d.textString(obj)
		if err != nil {
			return 0, err
		}
		dest, err = d.namedDestination(name)
		if err != nil {
			return 0, err
		}
	default:
		dest, err = d.destinationArray(obj)
		if err != nil {
			return 0, err
		}
	}

	if len(dest) == 0 {
		return 0, fmt.Errorf("empty destination array")
	}

	switch target := dest[0].(type) {
	case types.IndirectRef:
		pos, ok := d.pageIndex[target.ObjectNumber.Value()]
		if !ok {
			return 0, fmt.Errorf("destination object %d not in page index", target.ObjectNumber.Value())
		}
		return pos, nil
	case types.Integer:
		return target.Value(), nil
	default:
		return 0, fmt.Errorf("unsupported destination target %T", dest[0])
	}
}

// destinationArray normalizes a destination object to its array form:
// either the array itself or, for a destination dict, the array under /D.
func (d *Document) destinationArray(obj types.Object) (types.Array, error) {
	obj, err := d.reader.Dereference(obj)
	if err != nil {
		return nil, err
	}
	switch o := obj.(type) {
	case types.Array:
		return o, nil
	case types.Dict:
		return d.reader.DereferenceArray(o["D"])
	default:
		return nil, fmt.Errorf("unsupported destination type %T", obj)
	}
}

// namedDestination resolves a destination name to its array, first through
// the /Names name tree, then through the older catalog /Dests dictionary.
func (d *Document) namedDestination(name string) (types.Array, error) {
	rootDict, err := d.reader.Catalog()
	if err != nil {
		return nil, err
	}

	if namesDict, err := d.reader.DereferenceDict(rootDict["Names"]); err == nil {
		if destsDict, err := d.reader.DereferenceDict(namesDict["Dests"]); err == nil {
			if dest, found := d.lookupNameTree(destsDict, name, map[int]bool{}); found {
				return dest, nil
			}
		}
	}

	if destsDict, err := d.reader.DereferenceDict(rootDict["Dests"]); err == nil {
		if obj, found := destsDict.Find(name); found {
			return d.destinationArray(obj)
		}
	}

	return nil, fmt.Errorf("named destination %q not found", name)
}

// lookupNameTree searches one name tree node and its kids for name.
func (d *Document) lookupNameTree(node types.Dict, name string, visited map[int]bool) (types.Array, bool) {
	if names, err := d.reader.DereferenceArray(node["Names"]); err == nil {
		for i := 0; i+1 < len(names); i += 2 {
			key, err := d.textString(names[i])
			if err != nil || key != name {
				continue
			}
			dest, err := d.destinationArray(names[i+1])
			if err != nil {
				log.Printf("outline: bad destination for name %q: %v", name, err)
				return nil, false
			}
			return dest, true
		}
	}

	if kids, err := d.reader.DereferenceArray(node["Kids"]); err == nil {
		for _, kid := range kids {
			if ref, ok := kid.(types.IndirectRef); ok {
				objNr := ref.ObjectNumber.Value()
				if visited[objNr] {
					continue
				}
				visited[objNr] = true
			}
			kidDict, err := d.reader.DereferenceDict(kid)
			if err != nil {
				continue
			}
			if dest, found := d.lookupNameTree(kidDict, name, visited); found {
				return dest, true
			}
		}
	}

	return nil, false
}

// textString decodes a PDF text string object, accepting literal, hex and
// name forms.
func (d *Document) textString(obj types.Object) (string, error) {
	obj, err := d.reader.Dereference(obj)
	if err != nil {
		return "", err
	}
	switch s := obj.(type) {
	case types.StringLiteral:
		return types.StringLiteralToString(s)
	case types.HexLiteral:
		return types.HexLiteralToString(s)
	case types.Name:
		return s.Value(), nil
	default:
		return "", fmt.Errorf("unexpected string type %T", obj)
	}
}
