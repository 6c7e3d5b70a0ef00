package upload

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46}
	pngHeader  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	pdfHeader  = []byte("%PDF-1.7 content")
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		wantType string
		wantErr  bool
	}{
		{"jpeg ok", "avatar.jpg", jpegHeader, "image/jpeg", false},
		{"jpeg alt extension", "avatar.jpeg", jpegHeader, "image/jpeg", false},
		{"png ok", "avatar.PNG", pngHeader, "image/png", false},
		{"pdf ok", "cv.pdf", pdfHeader, "application/pdf", false},
		{"no extension", "avatar", jpegHeader, "", true},
		{"disallowed extension", "payload.exe", jpegHeader, "", true},
		{"spoofed content", "avatar.png", jpegHeader, "", true},
		{"too small", "avatar.jpg", []byte{0xFF, 0xD8}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contentType, err := Validate(tt.filename, tt.data, 1024)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, contentType)
		})
	}
}

func TestValidate_SizeLimit(t *testing.T) {
	_, err := Validate("avatar.jpg", jpegHeader, 4)
	assert.Error(t, err)
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("avatar.jpg"))
	assert.True(t, IsImage("avatar.WEBP"))
	assert.False(t, IsImage("cv.pdf"))
	assert.False(t, IsImage("avatar"))
}

func encodeTestImage(t *testing.T, w, h int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))
	return buf.Bytes()
}

func TestDownscale_LargeImage(t *testing.T) {
	data := encodeTestImage(t, 2048, 1024, func(buf *bytes.Buffer, img image.Image) error {
		return jpeg.Encode(buf, img, nil)
	})

	out, err := Downscale(data, 512)
	require.NoError(t, err)

	resized, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 512, resized.Bounds().Dx())
	assert.Equal(t, 256, resized.Bounds().Dy())
}

func TestDownscale_SmallImageUntouched(t *testing.T) {
	data := encodeTestImage(t, 100, 80, func(buf *bytes.Buffer, img image.Image) error {
		return png.Encode(buf, img)
	})

	out, err := Downscale(data, 512)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestDownscale_NonImagePassthrough(t *testing.T) {
	out, err := Downscale(pdfHeader, 512)
	require.NoError(t, err)
	assert.Equal(t, pdfHeader, out)
}
