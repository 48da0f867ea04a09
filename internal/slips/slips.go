// Package slips stores the payment slips shoppers upload for manual
// payment.
package slips

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/fjod/storefront/internal/apperr"
	"github.com/fjod/storefront/internal/domain"
	"github.com/google/uuid"
)

const MaxSlipSize = 5 << 20

type Store interface {
	Put(ctx context.Context, sessionID, fileName, contentType string, r io.Reader, size int64) (domain.SlipRef, error)
}

// Check rejects empty, oversized and unsupported uploads. Images and PDFs
// are accepted.
func Check(fileName, contentType string, size int64) error {
	if size <= 0 {
		return apperr.Validation("the slip is empty", "slip")
	}
	if size > MaxSlipSize {
		return apperr.Validation(fmt.Sprintf("the slip is larger than %d MB", MaxSlipSize>>20), "slip")
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if !strings.HasPrefix(ct, "image/") && ct != "application/pdf" {
		return apperr.Validation("the slip must be an image or a PDF", "slip")
	}
	if strings.TrimSpace(fileName) == "" {
		return apperr.Validation("the slip has no file name", "slip")
	}
	return nil
}

func objectKey(sessionID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return path.Join("slips", sessionID, uuid.NewString()+ext)
}
