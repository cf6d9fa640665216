package qrcode

import (
	"fmt"

	"passwordless/internal/domain/service"

	"github.com/skip2/go-qrcode"
)

type qrcodeService struct {
	defaultSize          int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(defaultSize int, errorCorrectionLevel string) service.QRCodeService {
	// Set error correction level
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}
	if defaultSize <= 0 {
		defaultSize = 256
	}

	return &qrcodeService{
		defaultSize:          defaultSize,
		errorCorrectionLevel: level,
	}
}

// GeneratePNG renders the content, typically an otpauth:// provisioning URI,
// as a PNG image of the requested pixel size.
func (s *qrcodeService) GeneratePNG(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = s.defaultSize
	}

	qrCode, err := qrcode.New(content, s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	pngBytes, err := qrCode.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}
