package famafrench

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/fundfactor/internal/contracts"
)

// libraryPage lists every dataset the library publishes
const libraryPage = "/data_library.html"

const csvZipSuffix = "_CSV.zip"

// Dataset is one downloadable entry of the library
type Dataset struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ListDatasets scrapes the library index for zipped CSV datasets, sorted by name
func (c *Client) ListDatasets(ctx context.Context) ([]Dataset, error) {
	body, err := c.fetch(ctx, c.baseURL+libraryPage)
	if err != nil {
		c.logger.WithError(err).Error("Failed to fetch data library index")
		return nil, fmt.Errorf("%w: data library index: %w", contracts.ErrDataUnavailable, err)
	}

	datasets, err := c.parseDatasets(string(body))
	if err != nil {
		return nil, err
	}

	c.logger.WithField("count", len(datasets)).Debug("Listed datasets")
	return datasets, nil
}

// parseDatasets extracts CSV zip links from the library index HTML
func (c *Client) parseDatasets(html string) ([]Dataset, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: parse HTML failed: %v", contracts.ErrFormat, err)
	}

	seen := make(map[string]bool)
	var datasets []Dataset
	doc.Find("a[href]").Each(func(i int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.HasSuffix(href, csvZipSuffix) {
			return
		}

		name := strings.TrimSuffix(path.Base(href), csvZipSuffix)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		datasets = append(datasets, Dataset{Name: name, URL: c.DatasetURL(name)})
	})

	sort.Slice(datasets, func(i, j int) bool {
		return datasets[i].Name < datasets[j].Name
	})
	return datasets, nil
}
