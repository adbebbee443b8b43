// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

// Package qrcode renders QR codes for out-of-band enrollment flows.
//
// It wraps the skip2/go-qrcode encoder and produces data URLs that clients
// can drop straight into an <img> tag without another round trip.
package qrcode

import (
	"encoding/base64"
	"fmt"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

// defaultSize is the image size in pixels when the caller passes 0.
const defaultSize = 256

// Generate creates a PNG QR code for the given content.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("qrcode: content cannot be empty")
	}
	if size <= 0 {
		size = defaultSize
	}

	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qrcode_encode_failed: %w", err)
	}
	return png, nil
}

// GenerateDataURL creates a base64 data URL (data:image/png;base64,...)
// rendering of the QR code for the given content.
func GenerateDataURL(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
