package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/client"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/errnorm"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/imagex"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/models"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/preview"
	"github.com/jain-bhavna/recipe-ai-app/internal/logging"
)

const DefaultRevealDelay = 100 * time.Millisecond

var ErrClosed = errors.New("workflow closed")

type Option func(*Workflow)

func WithRevealDelay(d time.Duration) Option {
	return func(w *Workflow) { w.revealDelay = d }
}

func WithPolicy(p imagex.Policy) Option {
	return func(w *Workflow) { w.policy = p }
}

func WithLogger(l logging.Logger) Option {
	return func(w *Workflow) { w.log = l }
}

// WithUnauthorizedHook sets fn to run after a detection fails with
// client.ErrUnauthorized, outside the workflow lock.
func WithUnauthorizedHook(fn func(ctx context.Context)) Option {
	return func(w *Workflow) { w.onUnauthorized = fn }
}

type Workflow struct {
	detector       Detector
	previews       PreviewStore
	policy         imagex.Policy
	revealDelay    time.Duration
	log            logging.Logger
	onUnauthorized func(ctx context.Context)
	afterFunc      func(d time.Duration, f func()) timer

	mu      sync.Mutex
	status  Status
	file    *Candidate
	preview *preview.Handle
	result  *models.Detection
	errMsg  string
	attempt uint64
	region  ResultsRegion
	reveal  timer
	closed  bool
}

func New(d Detector, previews PreviewStore, opts ...Option) *Workflow {
	w := &Workflow{
		detector:    d,
		previews:    previews,
		policy:      imagex.DefaultPolicy(),
		revealDelay: DefaultRevealDelay,
		log:         logging.Nop(),
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Mount attaches the region that receives reveal calls.
func (w *Workflow) Mount(r ResultsRegion) {
	w.mu.Lock()
	w.region = r
	w.mu.Unlock()
}

func (w *Workflow) Unmount() {
	w.mu.Lock()
	w.region = nil
	w.mu.Unlock()
}

// SelectFile offers c to the workflow. It reports whether the file was
// accepted. Drops of non-image types and selections made while a request is
// in flight are ignored without error. In strict policy mode a file that
// violates the size/format policy is rejected with the policy error and the
// state is left untouched.
func (w *Workflow) SelectFile(ctx context.Context, c Candidate, origin Origin) (bool, error) {
	if origin == OriginDrop && !strings.HasPrefix(imagex.NormalizeMIME(c.MediaType), "image/") {
		w.log.Debug(ctx, "ignored non-image drop", "name", c.Name, "type", c.MediaType)
		return false, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return false, ErrClosed
	}
	if w.status == Submitting {
		w.log.Debug(ctx, "ignored selection while submitting", "name", c.Name)
		return false, nil
	}

	h, head, err := w.copyPreview(c)
	if err != nil {
		return false, err
	}

	size := c.Size
	if h.Size > size {
		size = h.Size
	}
	if perr := w.policy.Check(size, c.MediaType, head); perr != nil {
		if w.policy.Strict() {
			h.Release()
			return false, perr
		}
		w.log.Warn(ctx, "file outside upload policy", "name", c.Name, "err", perr)
	}

	w.clearLocked()
	cand := c
	cand.Size = size
	w.file = &cand
	w.preview = h
	w.transition(ctx, FileSelected)
	return true, nil
}

func (w *Workflow) copyPreview(c Candidate) (*preview.Handle, []byte, error) {
	if c.Open == nil {
		return nil, nil, fmt.Errorf("candidate %q has no content", c.Name)
	}
	rc, err := c.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", c.Name, err)
	}
	defer rc.Close()

	head := make([]byte, imagex.HeadSize)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, nil, fmt.Errorf("read %s: %w", c.Name, err)
	}
	head = head[:n]

	h, err := w.previews.Create(c.Name, io.MultiReader(bytes.NewReader(head), rc))
	if err != nil {
		return nil, nil, err
	}
	return h, head, nil
}

// Submit sends the selected file for detection and blocks until the outcome
// is recorded. It returns false without doing anything unless a file is
// selected and no request is in flight.
func (w *Workflow) Submit(ctx context.Context) bool {
	w.mu.Lock()
	if w.closed || w.status != FileSelected {
		w.mu.Unlock()
		return false
	}
	w.attempt++
	id := w.attempt
	file := *w.file
	// Opened under the lock: a Replace during the upload may release the
	// preview, and the open descriptor keeps the content readable.
	f, openErr := os.Open(w.preview.Path)
	w.transition(ctx, Submitting)
	w.mu.Unlock()

	var (
		det models.Detection
		err error
	)
	if openErr != nil {
		err = fmt.Errorf("open preview: %w", openErr)
	} else {
		det, err = w.detector.DetectDish(ctx, file.Name, file.MediaType, f)
		_ = f.Close()
	}
	w.finish(ctx, id, det, err)
	return true
}

func (w *Workflow) finish(ctx context.Context, id uint64, det models.Detection, err error) {
	unauthorized := errors.Is(err, client.ErrUnauthorized)
	defer func() {
		if unauthorized && w.onUnauthorized != nil {
			w.onUnauthorized(ctx)
		}
	}()

	w.mu.Lock()
	defer w.mu.Unlock()

	if id != w.attempt || w.status != Submitting {
		w.log.Debug(ctx, "dropped stale detection result", "attempt", id)
		return
	}

	if err != nil {
		w.errMsg = errnorm.Message(err)
		w.transition(ctx, Failed)
		return
	}

	res := det.Clone()
	w.result = &res
	w.transition(ctx, Succeeded)
	w.scheduleReveal(id)
}

func (w *Workflow) scheduleReveal(id uint64) {
	w.stopReveal()
	w.reveal = w.afterFunc(w.revealDelay, func() { w.doReveal(id) })
}

func (w *Workflow) doReveal(id uint64) {
	w.mu.Lock()
	if id != w.attempt || w.status != Succeeded || w.region == nil {
		w.mu.Unlock()
		return
	}
	snap := w.snapshotLocked()
	region := w.region
	w.mu.Unlock()

	region.Reveal(snap)
}

func (w *Workflow) stopReveal() {
	if w.reveal != nil {
		w.reveal.Stop()
		w.reveal = nil
	}
}

// Replace discards the selection and any outcome and returns to Idle. A
// request still in flight is not cancelled; its completion is dropped.
// It reports false only after Close.
func (w *Workflow) Replace(ctx context.Context) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return false
	}
	w.clearLocked()
	w.transition(ctx, Idle)
	return true
}

// Close releases the preview and cancels a pending reveal. The workflow
// accepts no further selections.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.clearLocked()
	w.status = Idle
	w.closed = true
}

func (w *Workflow) clearLocked() {
	w.stopReveal()
	w.preview.Release()
	w.preview = nil
	w.file = nil
	w.result = nil
	w.errMsg = ""
	w.attempt++
}

func (w *Workflow) transition(ctx context.Context, to Status) {
	w.log.Debug(ctx, "workflow transition", "from", w.status, "to", to)
	w.status = to
}

func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Workflow) snapshotLocked() Snapshot {
	s := Snapshot{Status: w.status, ErrorMessage: w.errMsg}
	if w.file != nil {
		s.FileName = w.file.Name
		s.MediaType = w.file.MediaType
		s.Size = w.file.Size
	}
	if w.preview != nil {
		s.PreviewPath = w.preview.Path
	}
	if w.result != nil {
		r := w.result.Clone()
		s.Result = &r
	}
	return s
}
