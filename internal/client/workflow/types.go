package workflow

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/imagex"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/models"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/preview"
)

type Status int

const (
	Idle Status = iota
	FileSelected
	Submitting
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case FileSelected:
		return "file selected"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Origin tells how a file reached the workflow.
type Origin int

const (
	OriginPicker Origin = iota
	OriginDrop
)

// Candidate is a file offered for selection.
type Candidate struct {
	Name      string
	MediaType string
	Size      int64
	Open      func() (io.ReadCloser, error)
}

// FileCandidate describes the file at path. An empty mediaType is guessed
// from the file extension.
func FileCandidate(path, mediaType string) (Candidate, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Candidate{}, err
	}
	if fi.IsDir() {
		return Candidate{}, fmt.Errorf("%s is a directory", path)
	}

	if mediaType == "" {
		if ft, ok := imagex.TypeByExtension(path); ok {
			mediaType = ft.MIMEType
		} else {
			mediaType = "application/octet-stream"
		}
	}

	return Candidate{
		Name:      fi.Name(),
		MediaType: mediaType,
		Size:      fi.Size(),
		Open:      func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// Detector performs the detection request.
type Detector interface {
	DetectDish(ctx context.Context, fileName, mediaType string, body io.Reader) (models.Detection, error)
}

// PreviewStore creates preview handles for accepted files.
type PreviewStore interface {
	Create(name string, r io.Reader) (*preview.Handle, error)
}

// ResultsRegion is where a successful result is brought into view.
type ResultsRegion interface {
	Reveal(s Snapshot)
}

// Snapshot is a copy of the workflow state for rendering.
type Snapshot struct {
	Status       Status
	FileName     string
	MediaType    string
	Size         int64
	PreviewPath  string
	Result       *models.Detection
	ErrorMessage string
}

type timer interface {
	Stop() bool
}
