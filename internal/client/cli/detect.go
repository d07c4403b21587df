package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/client"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/models"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/workflow"
	"github.com/jain-bhavna/recipe-ai-app/internal/ui"
)

// Select picks an image file, as the file picker would.
func (a *App) Select(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.fail("usage: select <path>")
	}
	return a.protected(ctx, "select", func(ctx context.Context) error {
		return a.selectFile(ctx, args[0], "", workflow.OriginPicker)
	})
}

// Drop offers a file with a declared media type, as a drag-and-drop would.
// Non-image types are ignored.
func (a *App) Drop(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return a.fail("usage: drop <path> <media-type>")
	}
	return a.protected(ctx, "drop", func(ctx context.Context) error {
		return a.selectFile(ctx, args[0], args[1], workflow.OriginDrop)
	})
}

func (a *App) selectFile(ctx context.Context, path, mediaType string, origin workflow.Origin) error {
	c, err := workflow.FileCandidate(path, mediaType)
	if err != nil {
		return a.fail(err.Error())
	}

	ok, err := a.workflow.SelectFile(ctx, c, origin)
	if err != nil {
		return a.fail(err.Error())
	}
	if !ok {
		if a.workflow.Snapshot().Status == workflow.Submitting {
			a.println(ui.FormatWarning("A detection is in progress."))
		} else {
			a.println(ui.FormatWarning("Ignored: only images can be dropped."))
		}
		return nil
	}

	s := a.workflow.Snapshot()
	a.println(ui.FormatSuccess(fmt.Sprintf("Selected %s (%s, %d bytes)", s.FileName, s.MediaType, s.Size)))
	a.println(ui.FormatMuted("preview: " + s.PreviewPath))
	return nil
}

// Detect submits the selected image and shows the outcome.
func (a *App) Detect(ctx context.Context) error {
	return a.protected(ctx, "detect", func(ctx context.Context) error {
		select {
		case <-a.revealed:
		default:
		}
		a.setRevealPending(true)

		a.println(ui.FormatInfo("Analyzing..."))
		if !a.workflow.Submit(ctx) {
			if a.workflow.Snapshot().Status == workflow.Submitting {
				return a.fail("A detection is already in progress.")
			}
			return a.fail("Select an image first: run 'select <path>'")
		}

		s := a.workflow.Snapshot()
		switch s.Status {
		case workflow.Failed:
			if !a.isLoggedIn(ctx) {
				a.println(ui.FormatError(s.ErrorMessage))
				return client.ErrUnauthorized
			}
			return a.fail(s.ErrorMessage)
		case workflow.Succeeded:
			select {
			case <-a.revealed:
			case <-time.After(a.config.RevealDelay + revealGrace):
				a.showResultOnce(s)
			}
		}
		return nil
	})
}

// Reveal brings a successful result into view. It is called by the
// workflow after the reveal delay.
func (a *App) Reveal(s workflow.Snapshot) {
	if !a.showResultOnce(s) {
		return
	}
	select {
	case a.revealed <- struct{}{}:
	default:
	}
}

func (a *App) setRevealPending(v bool) {
	a.revealMu.Lock()
	a.revealPending = v
	a.revealMu.Unlock()
}

// showResultOnce prints the card unless the timer or the fallback in Detect
// already did for this detection.
func (a *App) showResultOnce(s workflow.Snapshot) bool {
	a.revealMu.Lock()
	defer a.revealMu.Unlock()
	if !a.revealPending {
		return false
	}
	a.revealPending = false
	a.printResult(s)
	return true
}

func (a *App) printResult(s workflow.Snapshot) {
	if s.Result == nil {
		return
	}
	a.println(ui.ResultCard(*s.Result, models.PlaceholderNutrition))
}

// Replace clears the selection so a new image can be chosen.
func (a *App) Replace(ctx context.Context) error {
	return a.protected(ctx, "replace", func(ctx context.Context) error {
		if !a.workflow.Replace(ctx) {
			return a.fail("The session is shutting down.")
		}
		a.println(ui.FormatInfo("Selection cleared."))
		return nil
	})
}

// Status prints the workflow state.
func (a *App) Status(ctx context.Context) error {
	return a.protected(ctx, "status", func(ctx context.Context) error {
		s := a.workflow.Snapshot()
		a.println("status: " + s.Status.String())
		if s.FileName != "" {
			a.println("file:   " + s.FileName)
		}
		if s.ErrorMessage != "" {
			a.println(ui.FormatError(s.ErrorMessage))
		}
		if s.Result != nil {
			a.println("dish:   " + s.Result.Label())
		}
		return nil
	})
}

// DetectFile selects path and runs detection in one step.
func (a *App) DetectFile(ctx context.Context, path string) error {
	if err := a.Select(ctx, []string{path}); err != nil {
		return err
	}
	if a.workflow.Snapshot().Status != workflow.FileSelected {
		return reportedError{fmt.Errorf("%s was not selected", path)}
	}
	return a.Detect(ctx)
}

