package qr

import (
	"github.com/skip2/go-qrcode"
)

const defaultSize = 256

// Encode 把兌換碼轉成 QR PNG，掃描端拿到的就是原始兌換碼字串
func Encode(content string) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, defaultSize)
}
