// Package hwp is the boundary to the external HWP automation application.
// The document object model lives entirely on the other side; this package
// only drives it and enforces the one-owner-at-a-time access rule.
package hwp

import "context"

// Format is a save-as target format.
type Format string

const (
	FormatHWP  Format = "hwp"
	FormatHWPX Format = "hwpx"
	FormatPDF  Format = "pdf"
	FormatTXT  Format = "txt"
	FormatJPG  Format = "jpg"
)

// KnownFormat reports whether f is a supported conversion target.
func KnownFormat(f Format) bool {
	switch f {
	case FormatHWP, FormatHWPX, FormatPDF, FormatTXT, FormatJPG:
		return true
	}
	return false
}

// LinkItem is one hyperlink control reported by the automation application.
type LinkItem struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// WatermarkSpec describes the text stamp applied across each page.
type WatermarkSpec struct {
	Text     string `json:"text"`
	FontSize int    `json:"font_size,omitempty"`
	Opacity  int    `json:"opacity,omitempty"`
	Angle    int    `json:"angle,omitempty"`
}

// HeaderFooterSpec describes header/footer content.
type HeaderFooterSpec struct {
	HeaderText  string `json:"header_text,omitempty"`
	FooterText  string `json:"footer_text,omitempty"`
	PageNumbers bool   `json:"page_numbers,omitempty"`
}

// Handler is the automation application surface. Implementations are NOT
// safe for concurrent use; route all calls through a Session. Every call
// operates on the currently open document unless noted.
type Handler interface {
	// Ping verifies the application is reachable; used as the session
	// setup probe.
	Ping(ctx context.Context) error

	Open(ctx context.Context, path string) error
	SaveAs(ctx context.Context, path string, format Format) error
	Close(ctx context.Context) error

	ExtractLinks(ctx context.Context) ([]LinkItem, error)
	ExportHTML(ctx context.Context) ([]byte, error)

	FieldNames(ctx context.Context) ([]string, error)
	InjectFields(ctx context.Context, values map[string]string) error

	ApplyWatermark(ctx context.Context, spec WatermarkSpec) error
	StripMetadata(ctx context.Context) error
	SetHeaderFooter(ctx context.Context, spec HeaderFooterSpec) error

	// MaskPattern replaces every regex match in body text and returns the
	// replacement count.
	MaskPattern(ctx context.Context, pattern, replacement string) (int, error)

	// MergeInto appends the given documents to the open one, in order.
	MergeInto(ctx context.Context, paths []string) error

	// SplitPages writes one file per page into outputDir and returns the
	// written paths.
	SplitPages(ctx context.Context, outputDir string) ([]string, error)
}
