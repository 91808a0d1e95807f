package pdf

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Document wraps a source PDF for bookmark editing. It holds the parsed
// source, a page index (page object number -> zero-based position) and a
// lazily built writable copy. A Document has exactly one logical owner and
// is not safe for concurrent use.
type Document struct {
	path        string
	keepOutline bool
	src         []byte
	reader      *model.Context
	pageIndex   map[int]int
	writer      *model.Context
	roots       []*Bookmark
	strategies  []copyStrategy
}

// Bookmark is an opaque handle for a bookmark added in this session. It is
// the only valid value for the parent argument of AddBookmark. The session
// tree is append-only; nodes are never mutated after creation.
type Bookmark struct {
	Title      string
	PageNumber int // zero-based
	kids       []*Bookmark
}

// Open reads and parses a source PDF in relaxed (non-strict) mode. The file
// is read into memory and closed before Open returns; no handle outlives the
// call. If keepOutline is true the existing outline is preserved and
// extended on Save, otherwise it is discarded.
func Open(path string, keepOutline bool) (*Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	ctx, err := api.ReadContext(bytes.NewReader(src), relaxedConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	d := &Document{
		path:        path,
		keepOutline: keepOutline,
		src:         src,
		reader:      ctx,
		strategies:  defaultCopyStrategies(),
	}
	d.pageIndex = buildPageIndex(ctx)

	return d, nil
}

// PageCount returns the number of pages recognized in the source document.
func (d *Document) PageCount() int {
	return len(d.pageIndex)
}

// AddBookmark appends a bookmark titled title pointing at the zero-based
// page pageNum. Passing a parent previously returned by this Document nests
// the new bookmark under it; nil adds a top-level bookmark. The page number
// is not range-checked here; out-of-range values fail at Save when the
// outline is installed.
func (d *Document) AddBookmark(title string, pageNum int, parent *Bookmark) (*Bookmark, error) {
	if _, err := d.ensureWriter(); err != nil {
		return nil, err
	}

	b := &Bookmark{Title: title, PageNumber: pageNum}
	if parent != nil {
		parent.kids = append(parent.kids, b)
	} else {
		d.roots = append(d.roots, b)
	}
	return b, nil
}

// Save writes the edited document to the sibling path with "_new" inserted
// before the extension, overwriting any file already there, and returns that
// path. Bookmarks added in this session are installed first; with
// keepOutline the source outline entries precede them. Calling Save again
// rewrites the same path.
func (d *Document) Save() (string, error) {
	writer, err := d.ensureWriter()
	if err != nil {
		return "", err
	}

	forest := d.outlineForest()
	if len(forest) > 0 {
		if err := installOutline(writer, forest); err != nil {
			return "", fmt.Errorf("failed to install bookmarks: %w", err)
		}
	}

	out := d.newPath()
	if _, err := os.Stat(out); err == nil {
		if err := os.Remove(out); err != nil {
			return "", fmt.Errorf("failed to remove previous output %s: %w", out, err)
		}
	}

	if err := api.WriteContextFile(writer, out); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", out, err)
	}
	return out, nil
}

// outlineForest assembles the bookmark forest to install at Save time:
// the source outline (when keepOutline) followed by session bookmarks,
// siblings in insertion order.
func (d *Document) outlineForest() []outlineEntry {
	var forest []outlineEntry
	if d.keepOutline {
		forest = append(forest, d.sourceOutline()...)
	}
	for _, b := range d.roots {
		forest = append(forest, b.toEntry())
	}
	return forest
}

func (b *Bookmark) toEntry() outlineEntry {
	e := outlineEntry{title: b.Title, pageIndex: b.PageNumber}
	for _, k := range b.kids {
		e.kids = append(e.kids, k.toEntry())
	}
	return e
}

// newPath inserts "_new" before the source path's extension.
func (d *Document) newPath() string {
	ext := filepath.Ext(d.path)
	return strings.TrimSuffix(d.path, ext) + "_new" + ext
}

// ensureWriter builds the writable copy on first access and caches it for
// the lifetime of the Document.
func (d *Document) ensureWriter() (*model.Context, error) {
	if d.writer != nil {
		return d.writer, nil
	}

	writer, err := buildWriter(d.src, d.strategies)
	if err != nil {
		return nil, err
	}

	if !d.keepOutline {
		// Drop any pre-existing outline root. Installing new bookmarks into
		// some pre-existing outline structures fails inside the library;
		// re-evaluate if upstream merges outlines cleanly.
		if rootDict, err := writer.Catalog(); err == nil {
			rootDict.Delete("Outlines")
		}
	}

	d.writer = writer
	return d.writer, nil
}

// buildPageIndex walks the page tree once and records the object number of
// every recognized page against its zero-based position. Unrecognized nodes
// are logged and skipped; a bad entry never aborts the load.
func buildPageIndex(ctx *model.Context) map[int]int {
	index := map[int]int{}
	walkPages(ctx, func(ref types.IndirectRef, _ types.Dict) {
		index[ref.ObjectNumber.Value()] = len(index)
	})
	return index
}

// collectPageRefs returns the page object references in document order.
func collectPageRefs(ctx *model.Context) []types.IndirectRef {
	var refs []types.IndirectRef
	walkPages(ctx, func(ref types.IndirectRef, _ types.Dict) {
		refs = append(refs, ref)
	})
	return refs
}

// walkPages traverses the page tree in document order, invoking visit once
// per recognized page.
func walkPages(ctx *model.Context, visit func(ref types.IndirectRef, page types.Dict)) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		log.Printf("page walk: no document catalog: %v", err)
		return
	}

	pagesRef := rootDict.IndirectRefEntry("Pages")
	if pagesRef == nil {
		log.Printf("page walk: catalog has no /Pages entry")
		return
	}

	walkPageNode(ctx, *pagesRef, map[int]bool{}, visit)
}

func walkPageNode(ctx *model.Context, ref types.IndirectRef, visited map[int]bool, visit func(ref types.IndirectRef, page types.Dict)) {
	objNr := ref.ObjectNumber.Value()
	if visited[objNr] {
		return
	}
	visited[objNr] = true

	d, err := ctx.DereferenceDict(ref)
	if err != nil {
		log.Printf("page walk: cannot resolve object %d: %v", objNr, err)
		return
	}

	switch nodeType(d) {
	case "Pages":
		kids, err := ctx.DereferenceArray(d["Kids"])
		if err != nil {
			log.Printf("page walk: bad /Kids in object %d: %v", objNr, err)
			return
		}
		for _, kid := range kids {
			kidRef, ok := kid.(types.IndirectRef)
			if !ok {
				log.Printf("page walk: unexpected kid %T in object %d", kid, objNr)
				continue
			}
			walkPageNode(ctx, kidRef, visited, visit)
		}
	case "Page":
		visit(ref, d)
	default:
		log.Printf("page walk: unknown page tree node type in object %d", objNr)
	}
}

// nodeType returns the /Type name of a dict, or "" when absent.
func nodeType(d types.Dict) string {
	if t := d.Type(); t != nil {
		return *t
	}
	return ""
}

func relaxedConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}
