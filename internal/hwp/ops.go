package hwp

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/twbeatles/hwpmaster-api/internal/batch"
	"github.com/twbeatles/hwpmaster-api/internal/outpath"
)

// The per-item operations below adapt the automation surface to the batch
// framework: each returns a batch.Operation that opens one document, applies
// an edit, and saves the result to a collision-free path in outputDir.

func fail(item batch.WorkItem, err error) batch.JobResult {
	return batch.JobResult{SourceRef: item.Ref, ErrorMessage: err.Error()}
}

func ok(item batch.WorkItem, output string) batch.JobResult {
	return batch.JobResult{Success: true, SourceRef: item.Ref, OutputRef: output}
}

// ConvertOp saves each input document in the target format.
func ConvertOp(sess *Session, format Format, outputDir string) batch.Operation {
	return func(ctx context.Context, item batch.WorkItem) batch.JobResult {
		out, err := outpath.Resolve(outputDir, item.Ref, outpath.Naming{NewExt: string(format)})
		if err != nil {
			return fail(item, err)
		}
		err = sess.Do(ctx, func(h Handler) error {
			if err := h.Open(ctx, item.Ref); err != nil {
				return err
			}
			defer h.Close(ctx)
			return h.SaveAs(ctx, out, format)
		})
		if err != nil {
			return fail(item, err)
		}
		return ok(item, out)
	}
}

// editOp is the shared shape of open-edit-save operations.
func editOp(sess *Session, outputDir, suffix string, edit func(ctx context.Context, h Handler) error) batch.Operation {
	return func(ctx context.Context, item batch.WorkItem) batch.JobResult {
		out, err := outpath.Resolve(outputDir, item.Ref, outpath.Naming{Suffix: suffix})
		if err != nil {
			return fail(item, err)
		}
		err = sess.Do(ctx, func(h Handler) error {
			if err := h.Open(ctx, item.Ref); err != nil {
				return err
			}
			defer h.Close(ctx)
			if err := edit(ctx, h); err != nil {
				return err
			}
			return h.SaveAs(ctx, out, formatOf(out))
		})
		if err != nil {
			return fail(item, err)
		}
		return ok(item, out)
	}
}

// WatermarkOp stamps each document and writes a *_watermarked copy.
func WatermarkOp(sess *Session, spec WatermarkSpec, outputDir string) batch.Operation {
	return editOp(sess, outputDir, "_watermarked", func(ctx context.Context, h Handler) error {
		return h.ApplyWatermark(ctx, spec)
	})
}

// StripMetadataOp clears document properties and writes a *_clean copy.
func StripMetadataOp(sess *Session, outputDir string) batch.Operation {
	return editOp(sess, outputDir, "_clean", func(ctx context.Context, h Handler) error {
		return h.StripMetadata(ctx)
	})
}

// HeaderFooterOp applies header/footer text and writes a *_hf copy.
func HeaderFooterOp(sess *Session, spec HeaderFooterSpec, outputDir string) batch.Operation {
	return editOp(sess, outputDir, "_hf", func(ctx context.Context, h Handler) error {
		return h.SetHeaderFooter(ctx, spec)
	})
}

// MaskOp replaces pattern matches in body text and writes a *_masked copy.
func MaskOp(sess *Session, pattern, replacement, outputDir string) batch.Operation {
	return editOp(sess, outputDir, "_masked", func(ctx context.Context, h Handler) error {
		_, err := h.MaskPattern(ctx, pattern, replacement)
		return err
	})
}

// SplitOp splits each document into per-page files under outputDir. The
// result's OutputRef lists the written paths.
func SplitOp(sess *Session, outputDir string) batch.Operation {
	return func(ctx context.Context, item batch.WorkItem) batch.JobResult {
		dir, err := outpath.EnsureDir(outputDir)
		if err != nil {
			return fail(item, err)
		}
		var paths []string
		err = sess.Do(ctx, func(h Handler) error {
			if err := h.Open(ctx, item.Ref); err != nil {
				return err
			}
			defer h.Close(ctx)
			var splitErr error
			paths, splitErr = h.SplitPages(ctx, dir)
			return splitErr
		})
		if err != nil {
			return fail(item, err)
		}
		return ok(item, strings.Join(paths, ";"))
	}
}

// InjectOp fills the template's fields from each item's data row and writes
// one generated document per row. The output name comes from the item label
// (the filename field of the row), sanitized and collision-resolved.
func InjectOp(sess *Session, templatePath, outputDir string) batch.Operation {
	return func(ctx context.Context, item batch.WorkItem) batch.JobResult {
		out, err := outpath.ResolveName(outputDir, item.DisplayLabel(), "hwp")
		if err != nil {
			return fail(item, err)
		}
		err = sess.Do(ctx, func(h Handler) error {
			if err := h.Open(ctx, templatePath); err != nil {
				return err
			}
			defer h.Close(ctx)
			if err := h.InjectFields(ctx, item.Fields); err != nil {
				return err
			}
			return h.SaveAs(ctx, out, FormatHWP)
		})
		if err != nil {
			return fail(item, err)
		}
		return ok(item, out)
	}
}

// MergeOp combines the submission's documents into one output file. The
// runner sees a single item whose result carries the combined document.
func MergeOp(sess *Session, files []string, outputDir, outputName string) batch.Operation {
	return func(ctx context.Context, item batch.WorkItem) batch.JobResult {
		out, err := mergeTarget(outputDir, files, outputName)
		if err != nil {
			return fail(item, err)
		}
		return MergeFiles(ctx, sess, files, out)
	}
}

// mergeTarget resolves the combined document's path: the requested name when
// given, otherwise the first input's stem with a _merged suffix.
func mergeTarget(outputDir string, files []string, outputName string) (string, error) {
	if outputName == "" {
		return outpath.Resolve(outputDir, files[0], outpath.Naming{Suffix: "_merged"})
	}
	ext := filepath.Ext(outputName)
	if ext == "" {
		ext = ".hwp"
	}
	return outpath.ResolveName(outputDir, strings.TrimSuffix(outputName, ext), ext)
}

// MergeFiles appends the remaining documents onto the first and saves the
// combined document to outputPath. One output, so this is a single job
// rather than a batch operation.
func MergeFiles(ctx context.Context, sess *Session, files []string, outputPath string) batch.JobResult {
	if len(files) == 0 {
		return batch.JobResult{ErrorMessage: "no input files"}
	}
	first := files[0]
	err := sess.Do(ctx, func(h Handler) error {
		if err := h.Open(ctx, first); err != nil {
			return err
		}
		defer h.Close(ctx)
		if len(files) > 1 {
			if err := h.MergeInto(ctx, files[1:]); err != nil {
				return err
			}
		}
		return h.SaveAs(ctx, outputPath, formatOf(outputPath))
	})
	if err != nil {
		return batch.JobResult{SourceRef: first, ErrorMessage: err.Error()}
	}
	return batch.JobResult{Success: true, SourceRef: first, OutputRef: outputPath}
}

// formatOf maps a file extension to a save format, defaulting to hwp.
func formatOf(path string) Format {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return FormatHWP
	}
	f := Format(strings.ToLower(path[i+1:]))
	if KnownFormat(f) {
		return f
	}
	return FormatHWP
}
