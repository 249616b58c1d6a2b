// Package export writes a campaign's content calendar to CSV for
// spreadsheet handoff.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"socialstudio/internal/logging"
	"socialstudio/internal/types"
)

var header = []string{"Date", "Platform", "Status", "Caption", "Hashtags", "Visual Prompt", "Visual URL"}

// Filename returns the conventional export name for a campaign.
func Filename(campaign types.Campaign) string {
	return campaign.CompanyName + "_content_calendar.csv"
}

// WriteCSV writes the posts of one campaign into dir under the
// conventional filename and returns the full path. Exporting a
// campaign with no posts is an error rather than an empty file.
func WriteCSV(dir string, campaign types.Campaign, posts []types.Post) (string, error) {
	if len(posts) == 0 {
		return "", fmt.Errorf("campaign %q has no posts to export", campaign.CompanyName)
	}

	path := filepath.Join(dir, Filename(campaign))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, p := range posts {
		if err := w.Write(row(p)); err != nil {
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush export: %w", err)
	}

	logging.Export("WriteCSV: wrote %d posts to %s", len(posts), path)
	return path, nil
}

func row(p types.Post) []string {
	return []string{
		p.Day,
		p.Platform.String(),
		string(p.Status),
		p.Caption,
		strings.Join(p.Hashtags, " "),
		p.VisualDescription,
		visualURL(p),
	}
}

// visualURL renders the committed image as a data URI, matching the
// in-app representation. Video posts and posts without a generated
// image export an empty cell.
func visualURL(p types.Post) string {
	if p.Visual.Kind == types.KindImage && p.Visual.Image != nil {
		return p.Visual.Image.DataURI()
	}
	return ""
}
