package linkcheck

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/twbeatles/hwpmaster-api/internal/model"
)

// ExtractLinks pulls anchor hrefs out of an HTML export of a document, in
// document order. Duplicates are kept: occurrence order and multiplicity
// matter to the checking pool's cache semantics.
func ExtractLinks(r io.Reader) ([]model.LinkRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var records []model.LinkRecord
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		text := strings.TrimSpace(a.Text())
		if text == "" {
			text = href
		}
		records = append(records, model.NewLinkRecord(href, text))
	})
	return records, nil
}

// RecordsFromURLs builds unknown-status records from a plain URL list.
func RecordsFromURLs(urls []string) []model.LinkRecord {
	records := make([]model.LinkRecord, len(urls))
	for i, u := range urls {
		records[i] = model.NewLinkRecord(u, u)
	}
	return records
}
