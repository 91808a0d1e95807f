package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ResavePDF optimizes and compresses a PDF file.
func ResavePDF(inFile, outFile string) error {
	if err := api.OptimizeFile(inFile, outFile, relaxedConfiguration()); err != nil {
		return fmt.Errorf("optimize failed: %w", err)
	}
	return nil
}
