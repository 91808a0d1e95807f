package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// RemovePagesFromPDF removes the specified pages from a PDF file.
func RemovePagesFromPDF(inFile, outFile, pages string) error {
	// Parse page specification
	pageNumbers, err := ParsePageSpecifier(pages)
	if err != nil {
		return err
	}

	// Validate page numbers against the PDF page count before processing
	totalPages, err := api.PageCountFile(inFile)
	if err != nil {
		return fmt.Errorf("failed to get page count: %v", err)
	}

	if err := ValidatePageNumbers(pageNumbers, totalPages); err != nil {
		return err
	}

	pageStrs := make([]string, len(pageNumbers))
	for i, p := range pageNumbers {
		pageStrs[i] = fmt.Sprintf("%d", p)
	}

	if err := api.RemovePagesFile(inFile, outFile, pageStrs, relaxedConfiguration()); err != nil {
		return fmt.Errorf("page removal failed: %w", err)
	}

	return nil
}
