package service

// QRCodeService renders provisioning URIs as QR code images.
type QRCodeService interface {
	GeneratePNG(content string, size int) ([]byte, error)
}
