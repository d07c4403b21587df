// Package imagex recognizes image formats by their leading bytes and checks
// a candidate upload against the size/format policy.
package imagex

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// HeadSize is how many leading bytes Sniff needs to tell every known type apart.
const HeadSize = 12

const DefaultMaxBytes = 5 << 20

var (
	ErrUnknownFormat     = errors.New("unknown image format")
	ErrFileTooLarge      = errors.New("file too large")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

type FileType struct {
	MIMEType   string
	Magic      []byte
	Offset     int
	Extensions []string
}

var fileTypes = []FileType{
	{
		MIMEType:   "image/jpeg",
		Magic:      []byte{0xFF, 0xD8, 0xFF},
		Extensions: []string{".jpg", ".jpeg"},
	},
	{
		MIMEType:   "image/png",
		Magic:      []byte{0x89, 0x50, 0x4E, 0x47},
		Extensions: []string{".png"},
	},
	{
		// RIFF container, "WEBP" fourcc after the chunk size
		MIMEType:   "image/webp",
		Magic:      []byte("WEBP"),
		Offset:     8,
		Extensions: []string{".webp"},
	},
	{
		MIMEType:   "image/gif",
		Magic:      []byte{0x47, 0x49, 0x46, 0x38},
		Extensions: []string{".gif"},
	},
}

// DefaultAllowed are the formats the detector accepts.
var DefaultAllowed = []string{"image/jpeg", "image/png", "image/webp"}

// Sniff returns the file type whose signature head starts with.
func Sniff(head []byte) (FileType, error) {
	for _, ft := range fileTypes {
		if len(head) < ft.Offset+len(ft.Magic) {
			continue
		}
		if ft.Offset > 0 && !bytes.HasPrefix(head, []byte("RIFF")) {
			continue
		}
		if bytes.Equal(head[ft.Offset:ft.Offset+len(ft.Magic)], ft.Magic) {
			return ft, nil
		}
	}
	return FileType{}, ErrUnknownFormat
}

// TypeByExtension maps a file name's extension to a known image type.
func TypeByExtension(name string) (FileType, bool) {
	name = strings.ToLower(name)
	for _, ft := range fileTypes {
		for _, ext := range ft.Extensions {
			if strings.HasSuffix(name, ext) {
				return ft, true
			}
		}
	}
	return FileType{}, false
}

// NormalizeMIME lowercases t, drops parameters and folds image/jpg into image/jpeg.
func NormalizeMIME(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if t == "image/jpg" {
		return "image/jpeg"
	}
	return t
}

type Mode string

const (
	// ModeAdvisory reports violations but lets the upload proceed.
	ModeAdvisory Mode = "advisory"
	// ModeStrict rejects violating files before they are selected.
	ModeStrict Mode = "strict"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAdvisory, "":
		return ModeAdvisory, nil
	case ModeStrict:
		return ModeStrict, nil
	}
	return "", fmt.Errorf("unknown upload policy %q", s)
}

type Policy struct {
	Mode     Mode
	MaxBytes int64
	Allowed  []string
}

func DefaultPolicy() Policy {
	return Policy{Mode: ModeAdvisory, MaxBytes: DefaultMaxBytes, Allowed: DefaultAllowed}
}

func (p Policy) Strict() bool { return p.Mode == ModeStrict }

// Check returns every violation of p by a file of size bytes, declared as
// declared, whose content starts with head. A nil error means the file
// conforms. Whether a violation blocks the upload is up to the caller (see
// Strict).
func (p Policy) Check(size int64, declared string, head []byte) error {
	var errs []error

	if p.MaxBytes > 0 && size > p.MaxBytes {
		errs = append(errs, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, size, p.MaxBytes))
	}

	ft, err := Sniff(head)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err))
	case !p.allowed(ft.MIMEType):
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ft.MIMEType))
	case declared != "" && NormalizeMIME(declared) != ft.MIMEType:
		errs = append(errs, fmt.Errorf("%w: declared %s, content is %s", ErrUnsupportedFormat, declared, ft.MIMEType))
	}

	return errors.Join(errs...)
}

func (p Policy) allowed(mime string) bool {
	allowed := p.Allowed
	if len(allowed) == 0 {
		allowed = DefaultAllowed
	}
	for _, a := range allowed {
		if NormalizeMIME(a) == mime {
			return true
		}
	}
	return false
}
