package hwp

import (
	"context"
	"fmt"
)

// Command is one step of a scripted action sequence against a single open
// document. Each action kind is its own type; dispatch is a type switch in
// the session goroutine, not string comparison.
type Command interface {
	Describe() string
	run(ctx context.Context, h Handler) error
}

type OpenCommand struct{ Path string }

func (c OpenCommand) Describe() string { return "open " + c.Path }
func (c OpenCommand) run(ctx context.Context, h Handler) error {
	return h.Open(ctx, c.Path)
}

type SaveAsCommand struct {
	Path   string
	Format Format
}

func (c SaveAsCommand) Describe() string { return fmt.Sprintf("save as %s (%s)", c.Path, c.Format) }
func (c SaveAsCommand) run(ctx context.Context, h Handler) error {
	return h.SaveAs(ctx, c.Path, c.Format)
}

type WatermarkCommand struct{ Spec WatermarkSpec }

func (c WatermarkCommand) Describe() string { return "watermark " + c.Spec.Text }
func (c WatermarkCommand) run(ctx context.Context, h Handler) error {
	return h.ApplyWatermark(ctx, c.Spec)
}

type StripMetadataCommand struct{}

func (c StripMetadataCommand) Describe() string { return "strip metadata" }
func (c StripMetadataCommand) run(ctx context.Context, h Handler) error {
	return h.StripMetadata(ctx)
}

type HeaderFooterCommand struct{ Spec HeaderFooterSpec }

func (c HeaderFooterCommand) Describe() string { return "set header/footer" }
func (c HeaderFooterCommand) run(ctx context.Context, h Handler) error {
	return h.SetHeaderFooter(ctx, c.Spec)
}

type MaskCommand struct {
	Pattern     string
	Replacement string
}

func (c MaskCommand) Describe() string { return "mask " + c.Pattern }
func (c MaskCommand) run(ctx context.Context, h Handler) error {
	_, err := h.MaskPattern(ctx, c.Pattern, c.Replacement)
	return err
}

type CloseCommand struct{}

func (c CloseCommand) Describe() string { return "close document" }
func (c CloseCommand) run(ctx context.Context, h Handler) error {
	return h.Close(ctx)
}

// ScriptStep records one executed command and its outcome.
type ScriptStep struct {
	Description string
	Err         error
}

// ScriptResult aggregates a command sequence run. Unlike a batch of files,
// a sequence mutates one document, so StopOnError halts at the first
// failure instead of continuing.
type ScriptResult struct {
	Steps   []ScriptStep
	Stopped bool
}

// OK reports whether every executed step succeeded.
func (r ScriptResult) OK() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return false
		}
	}
	return true
}

// RunScript executes a command sequence on the session, in order. With
// stopOnError, the first failing command ends the run and Stopped is set;
// otherwise failures are recorded per step and the sequence continues.
func (s *Session) RunScript(ctx context.Context, cmds []Command, stopOnError bool) ScriptResult {
	var result ScriptResult
	for _, cmd := range cmds {
		if ctx.Err() != nil {
			result.Stopped = true
			return result
		}
		err := s.Do(ctx, func(h Handler) error {
			return cmd.run(ctx, h)
		})
		result.Steps = append(result.Steps, ScriptStep{Description: cmd.Describe(), Err: err})
		if err != nil && stopOnError {
			result.Stopped = true
			return result
		}
	}
	return result
}
