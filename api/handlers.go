package api

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	pdfPkg "pdf_bookmarks/pdf"

	"github.com/gin-gonic/gin"
)

func HandleListBookmarks(c *gin.Context, config *Config) {
	file, header, err := c.Request.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No PDF file provided"})
		return
	}
	defer file.Close()

	// Validate PDF file
	if err := validatePDFFile(file, header, config.MaxFileSize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Create temp input file
	if err := ensureTempDir(config.TempDir); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create temp directory"})
		return
	}

	uniqueID := generateUniqueID()
	inFile := filepath.Join(config.TempDir, "list_"+uniqueID+".pdf")

	out, err := os.Create(inFile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create temp file"})
		return
	}

	_, err = out.ReadFrom(file)
	out.Close()
	if err != nil {
		os.Remove(inFile) // Clean up on error
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save input file"})
		return
	}

	doc, err := pdfPkg.Open(inFile, false)
	if err != nil {
		os.Remove(inFile)
		log.Printf("PDF open error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse PDF"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_pages": doc.PageCount(),
		"bookmarks":   doc.ExistingBookmarks(),
	})

	// Clean up temp file after response is sent
	defer func() {
		go func() {
			time.Sleep(ListCleanupDelay)
			os.Remove(inFile)
		}()
	}()
}

func HandleAddBookmarks(c *gin.Context, config *Config) {
	spec := c.PostForm("bookmarks")
	if spec == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No bookmarks specified"})
		return
	}
	keepOutline := c.PostForm("keep_outline") == "true"

	handlePDFFile(c, config, func(inFile, outFile string) error {
		doc, err := pdfPkg.Open(inFile, keepOutline)
		if err != nil {
			return err
		}
		if err := doc.AddBookmarksFromSpec(spec); err != nil {
			return err
		}
		saved, err := doc.Save()
		if err != nil {
			return err
		}
		return os.Rename(saved, outFile)
	}, "bookmarked")
}

func HandleRemoveBookmarks(c *gin.Context, config *Config) {
	handlePDFFile(c, config, pdfPkg.RemoveBookmarksFromPDF, "bookmarks_removed")
}

func HandleResave(c *gin.Context, config *Config) {
	handlePDFFile(c, config, pdfPkg.ResavePDF, "resaved")
}

func HandleRemovePages(c *gin.Context, config *Config) {
	pagesParam := c.PostForm("pages")
	if pagesParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No pages specified"})
		return
	}

	handlePDFFile(c, config, func(inFile, outFile string) error {
		return pdfPkg.RemovePagesFromPDF(inFile, outFile, pagesParam)
	}, "pages_removed")
}

func handlePDFFile(c *gin.Context, config *Config, operation func(string, string) error, suffix string) {
	file, header, err := c.Request.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No PDF file provided"})
		return
	}
	defer file.Close()

	// Validate PDF file
	if err := validatePDFFile(file, header, config.MaxFileSize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Create temp input file
	if err := ensureTempDir(config.TempDir); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create temp directory"})
		return
	}

	uniqueID := generateUniqueID()
	inFile := filepath.Join(config.TempDir, "input_"+uniqueID+".pdf")
	outFile := filepath.Join(config.TempDir, "output_"+uniqueID+"_"+suffix+".pdf")

	out, err := os.Create(inFile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create temp file"})
		return
	}

	_, err = out.ReadFrom(file)
	out.Close()
	if err != nil {
		os.Remove(inFile) // Clean up on error
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save input file"})
		return
	}

	// Perform operation
	err = operation(inFile, outFile)
	if err != nil {
		os.Remove(inFile) // Clean up input file on error
		if _, statErr := os.Stat(outFile); statErr == nil {
			os.Remove(outFile) // Clean up output file if it exists
		}
		log.Printf("PDF operation error: %v", err)
		// Return more detailed error message to client
		errorMsg := "PDF operation failed"
		if errStr := err.Error(); errStr != "" {
			// Truncate long error messages but include key info
			if len(errStr) > 200 {
				errorMsg = errStr[:200] + "..."
			} else {
				errorMsg = errStr
			}
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errorMsg})
		return
	}

	// Verify output file exists before sending
	if _, err := os.Stat(outFile); os.IsNotExist(err) {
		os.Remove(inFile)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "PDF operation did not produce output file"})
		return
	}

	// Set headers for file download
	c.Header("Content-Type", "application/pdf")

	// Get original filename from form if available, otherwise use default
	filename := "document_" + suffix + ".pdf"
	if header != nil {
		originalName := header.Filename
		// Remove .pdf extension if present, add suffix
		if strings.HasSuffix(strings.ToLower(originalName), ".pdf") {
			filename = originalName[:len(originalName)-4] + "_" + suffix + ".pdf"
		} else {
			filename = originalName + "_" + suffix + ".pdf"
		}
		filename = sanitizeFilename(filename)
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	// Return the processed file for download
	c.File(outFile)

	// Clean up temp files after response is sent to avoid race conditions
	defer func() {
		go func() {
			// Wait a bit to ensure file transfer completes
			time.Sleep(FileCleanupDelay)
			os.Remove(inFile)
			os.Remove(outFile)
		}()
	}()
}

// ensureTempDir creates the temp directory if it doesn't exist
func ensureTempDir(tempDir string) error {
	return os.MkdirAll(tempDir, DefaultFilePermissions)
}

// sanitizeFilename removes path traversal attempts and dangerous characters
func sanitizeFilename(filename string) string {
	// Remove directory separators and path traversal attempts
	filename = strings.ReplaceAll(filename, "..", "")
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")

	// Get just the base filename to prevent path issues
	filename = filepath.Base(filename)

	// Remove any remaining dangerous characters
	filename = strings.TrimSpace(filename)

	// If empty after sanitization, use default
	if filename == "" {
		filename = "document.pdf"
	}

	return filename
}

// generateUniqueID generates a unique identifier for temp files
func generateUniqueID() string {
	// Use timestamp + random bytes for uniqueness
	b := make([]byte, 8)
	rand.Read(b)
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("%d_%s", timestamp, hex.EncodeToString(b))
}

// validatePDFFile checks if the file is a valid PDF by reading the header
func validatePDFFile(file multipart.File, header *multipart.FileHeader, maxSize int64) error {
	if header.Size > maxSize {
		return fmt.Errorf("file size %d exceeds maximum allowed %d bytes", header.Size, maxSize)
	}

	// Read first 4 bytes to check PDF header
	buffer := make([]byte, 4)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file header: %v", err)
	}

	if n < 4 || string(buffer[:4]) != "%PDF" {
		return fmt.Errorf("invalid PDF file: header does not match")
	}

	// Seek back to beginning for subsequent reads
	_, err = file.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("failed to reset file position: %v", err)
	}

	return nil
}
