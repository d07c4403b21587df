package imagex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jpegHead = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F', 0, 1}
	pngHead  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0, 0, 0, 0x0D}
	webpHead = []byte{'R', 'I', 'F', 'F', 0x24, 0, 0, 0, 'W', 'E', 'B', 'P'}
	gifHead  = []byte("GIF89a......")
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want string
	}{
		{"jpeg", jpegHead, "image/jpeg"},
		{"png", pngHead, "image/png"},
		{"webp", webpHead, "image/webp"},
		{"gif", gifHead, "image/gif"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft, err := Sniff(tt.head)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ft.MIMEType)
		})
	}

	_, err := Sniff([]byte("%PDF-1.7"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Sniff([]byte{0xFF})
	assert.ErrorIs(t, err, ErrUnknownFormat, "short heads are unknown")

	_, err = Sniff([]byte("XXXXXXXXWEBP"))
	assert.ErrorIs(t, err, ErrUnknownFormat, "webp needs the RIFF container")
}

func TestTypeByExtension(t *testing.T) {
	ft, ok := TypeByExtension("Dinner.JPG")
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", ft.MIMEType)

	_, ok = TypeByExtension("notes.txt")
	assert.False(t, ok)
}

func TestNormalizeMIME(t *testing.T) {
	assert.Equal(t, "image/jpeg", NormalizeMIME("image/jpg"))
	assert.Equal(t, "image/png", NormalizeMIME(" Image/PNG; q=1"))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAdvisory, m)

	m, err = ParseMode("STRICT")
	require.NoError(t, err)
	assert.Equal(t, ModeStrict, m)

	_, err = ParseMode("lenient")
	assert.Error(t, err)
}

func TestPolicy_Check(t *testing.T) {
	p := DefaultPolicy()

	assert.NoError(t, p.Check(1024, "image/jpeg", jpegHead))
	assert.NoError(t, p.Check(1024, "image/jpg", jpegHead))
	assert.NoError(t, p.Check(1024, "", webpHead))

	err := p.Check(DefaultMaxBytes+1, "image/png", pngHead)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)

	err = p.Check(10, "image/gif", gifHead)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	err = p.Check(10, "image/png", jpegHead)
	assert.ErrorIs(t, err, ErrUnsupportedFormat, "declared type must match content")

	err = p.Check(DefaultMaxBytes*2, "text/plain", []byte("hello world!"))
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
