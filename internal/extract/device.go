package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/devspec/internal/model"
)

// ErrModelNameNotFound is returned when a page has no model name heading.
// Such a page is usually an error or interstitial page stored by mistake.
var ErrModelNameNotFound = errors.New("model name not found")

// Selectors of the specification cells.
const (
	modelNameSelector = `h1[data-spec="modelname"]`
	statusSelector    = `td[data-spec="status"]`
	osSelector        = `td[data-spec="os"]`
	modelsSelector    = `td[data-spec="models"]`
	priceSelector     = `td[data-spec="price"]`
)

// Device extracts the attributes of one stored device page.
// The model name is required; the other fields are empty when their cell
// is missing, independently of each other.
func Device(rec model.Record) (model.DeviceInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.HTML))
	if err != nil {
		return model.DeviceInfo{}, fmt.Errorf("failed to parse %s: %w", rec.URL, err)
	}

	name := cellText(doc, modelNameSelector)
	if name == "" {
		return model.DeviceInfo{}, fmt.Errorf("%s: %w", rec.URL, ErrModelNameNotFound)
	}

	return model.DeviceInfo{
		URL:       rec.URL,
		ModelName: name,
		Status:    cellText(doc, statusSelector),
		OS:        cellText(doc, osSelector),
		Model:     cellText(doc, modelsSelector),
		Price:     cellText(doc, priceSelector),
	}, nil
}

// cellText returns the trimmed text of the first match, or "".
func cellText(doc *goquery.Document, selector string) string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	return strings.Join(strings.Fields(sel.Text()), " ")
}
