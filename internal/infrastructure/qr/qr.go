package qr

import qrcode "github.com/skip2/go-qrcode"

// EncodePNG кодирует ссылку на оплату в PNG-картинку QR-кода.
func EncodePNG(url string) ([]byte, error) {
	return qrcode.Encode(url, qrcode.Medium, 512)
}
