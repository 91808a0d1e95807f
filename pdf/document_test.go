package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBuildsPageIndex(t *testing.T) {
	path := writeTempPDF(t, "five.pdf", buildPDF(5))

	doc, err := Open(path, false)
	require.NoError(t, err)

	assert.Equal(t, 5, doc.PageCount())
	// Pages are objects 3..7, in document order.
	for i := 0; i < 5; i++ {
		assert.Equal(t, i, doc.pageIndex[3+i])
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.pdf"), false)
	require.Error(t, err)
}

func TestOpenGarbageFile(t *testing.T) {
	path := writeTempPDF(t, "garbage.pdf", []byte("not a pdf at all"))
	_, err := Open(path, false)
	require.Error(t, err)
}

func TestNewPath(t *testing.T) {
	d := &Document{path: "/tmp/report.pdf"}
	assert.Equal(t, "/tmp/report_new.pdf", d.newPath())

	d = &Document{path: "/tmp/noext"}
	assert.Equal(t, "/tmp/noext_new", d.newPath())
}

func TestAddBookmarkRoundTrip(t *testing.T) {
	path := writeTempPDF(t, "sample.pdf", buildPDF(3))

	doc, err := Open(path, false)
	require.NoError(t, err)

	_, err = doc.AddBookmark("Intro", 0, nil)
	require.NoError(t, err)

	out, err := doc.Save()
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSuffix(path, ".pdf")+"_new.pdf", out)

	reopened, err := Open(out, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Intro  1"}, reopened.ExistingBookmarks())
}

func TestAddBookmarkNesting(t *testing.T) {
	path := writeTempPDF(t, "nested.pdf", buildPDF(5))

	doc, err := Open(path, false)
	require.NoError(t, err)

	b0, err := doc.AddBookmark("Parent", 2, nil)
	require.NoError(t, err)
	_, err = doc.AddBookmark("Child", 3, b0)
	require.NoError(t, err)

	out, err := doc.Save()
	require.NoError(t, err)

	reopened, err := Open(out, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Parent  3", " Child  4"}, reopened.ExistingBookmarks())
}

func TestSaveTwiceOverwritesSamePath(t *testing.T) {
	path := writeTempPDF(t, "twice.pdf", buildPDF(2))

	doc, err := Open(path, false)
	require.NoError(t, err)
	_, err = doc.AddBookmark("Once", 0, nil)
	require.NoError(t, err)

	first, err := doc.Save()
	require.NoError(t, err)
	second, err := doc.Save()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Exactly one output file, and the source untouched.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	reopened, err := Open(second, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Once  1"}, reopened.ExistingBookmarks())
}

func TestWriterBuiltOnce(t *testing.T) {
	path := writeTempPDF(t, "cached.pdf", buildPDF(2))

	doc, err := Open(path, false)
	require.NoError(t, err)

	first, err := doc.ensureWriter()
	require.NoError(t, err)
	second, err := doc.ensureWriter()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestKeepOutlinePreservesExisting(t *testing.T) {
	path := writeTempPDF(t, "keep.pdf", buildOutlinePDF())

	doc, err := Open(path, true)
	require.NoError(t, err)

	_, err = doc.AddBookmark("Appendix", 2, nil)
	require.NoError(t, err)

	out, err := doc.Save()
	require.NoError(t, err)

	reopened, err := Open(out, false)
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"Intro  1", "Chapter  2", " Detail  3", "Appendix  3"},
		reopened.ExistingBookmarks())
}

func TestAddBookmarksOutOfPageOrder(t *testing.T) {
	// Sibling order is insertion order; a later bookmark may point at an
	// earlier page.
	path := writeTempPDF(t, "unordered.pdf", buildPDF(5))

	doc, err := Open(path, false)
	require.NoError(t, err)

	_, err = doc.AddBookmark("Appendix", 4, nil)
	require.NoError(t, err)
	_, err = doc.AddBookmark("Intro", 0, nil)
	require.NoError(t, err)

	out, err := doc.Save()
	require.NoError(t, err)

	reopened, err := Open(out, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Appendix  5", "Intro  1"}, reopened.ExistingBookmarks())
}

func TestKeepOutlineAddEarlierPage(t *testing.T) {
	// Session bookmarks follow the kept outline even when they target pages
	// before its last entry.
	path := writeTempPDF(t, "keepearly.pdf", buildOutlinePDF())

	doc, err := Open(path, true)
	require.NoError(t, err)

	_, err = doc.AddBookmark("First", 0, nil)
	require.NoError(t, err)

	out, err := doc.Save()
	require.NoError(t, err)

	reopened, err := Open(out, false)
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"Intro  1", "Chapter  2", " Detail  3", "First  1"},
		reopened.ExistingBookmarks())
}

func TestSaveRejectsOutOfRangePage(t *testing.T) {
	path := writeTempPDF(t, "range.pdf", buildPDF(2))

	doc, err := Open(path, false)
	require.NoError(t, err)
	_, err = doc.AddBookmark("Beyond", 7, nil)
	require.NoError(t, err)

	_, err = doc.Save()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targets page 8")
}

func TestDiscardOutlineByDefault(t *testing.T) {
	path := writeTempPDF(t, "discard.pdf", buildOutlinePDF())

	doc, err := Open(path, false)
	require.NoError(t, err)

	_, err = doc.AddBookmark("Only", 0, nil)
	require.NoError(t, err)

	out, err := doc.Save()
	require.NoError(t, err)

	reopened, err := Open(out, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Only  1"}, reopened.ExistingBookmarks())
}
