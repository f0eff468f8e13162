package agreement

import (
	"bytes"
	"strings"

	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/domain"
)

// MaxDocumentBytes bounds uploaded agreements. Documents are read fully into
// memory before encoding, which is only acceptable because signed agreements
// are small PDFs, not arbitrary binaries.
const MaxDocumentBytes = 10 << 20

var pdfMagic = []byte("%PDF-")

// ValidatePDF gates the extended workflow: only a real PDF may progress it.
// The filename extension, the declared content type, and the leading magic
// bytes must all agree.
func ValidatePDF(filename, contentType string, data []byte) error {
	if len(data) > MaxDocumentBytes {
		return domain.ErrDocumentTooLarge
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return domain.ErrNotPDF
	}
	if contentType != "" && contentType != "application/pdf" && contentType != "application/octet-stream" {
		return domain.ErrNotPDF
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return domain.ErrNotPDF
	}
	return nil
}
