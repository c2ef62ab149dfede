package qr

import qrcode "github.com/skip2/go-qrcode"

// PNG encodes the given URL as a QR code PNG.
func PNG(url string, size int) ([]byte, error) {
	if size <= 0 {
		size = 512
	}
	return qrcode.Encode(url, qrcode.Medium, size)
}
