package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// RemoveBookmarksFromPDF strips the outline from a PDF file.
func RemoveBookmarksFromPDF(inFile, outFile string) error {
	if err := api.RemoveBookmarksFile(inFile, outFile, relaxedConfiguration()); err != nil {
		return fmt.Errorf("bookmark removal failed: %w", err)
	}
	return nil
}
