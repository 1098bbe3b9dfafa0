package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	_ "golang.org/x/image/webp" // 支援 WebP
)

// Service 圖片前處理服務：分析輸入附圖前先驗證、統一轉成 JPEG data URL
type Service struct {
	maxSizeBytes int64
}

// NewService 創建圖片前處理服務
func NewService(maxSizeBytes int64) *Service {
	return &Service{
		maxSizeBytes: maxSizeBytes,
	}
}

// Prepare 驗證 base64 圖片並重新編碼成 JPEG data URL
func (s *Service) Prepare(imageData string) (string, error) {
	if imageData == "" {
		return "", nil
	}

	// 去掉 data URL 前綴
	raw := imageData
	if strings.HasPrefix(raw, "data:image/") {
		if idx := strings.Index(raw, ","); idx != -1 {
			raw = raw[idx+1:]
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base64 image data: %w", err)
	}

	if int64(len(decoded)) > s.maxSizeBytes {
		return "", fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes)
	}

	img, format, err := image.Decode(bytes.NewReader(decoded))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	if !isSupportedFormat(format) {
		return "", fmt.Errorf("unsupported image format: %s", format)
	}

	// 統一轉成 JPEG，模型端不用處理多種格式
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode image as JPEG: %w", err)
	}

	return fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

// isSupportedFormat 檢查圖片格式
func isSupportedFormat(format string) bool {
	switch format {
	case "jpeg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}
