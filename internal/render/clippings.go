package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bookmarks/internal/domain"
)

// ParseClipping turns a markdown clipping into an import record. The url
// comes from the url (or source) front matter key, the title from the
// title key or the file name, and the body becomes the description.
func (m *Markdown) ParseClipping(name string, src []byte) (domain.ImportRecord, error) {
	_, metaData, err := m.convert(src)
	if err != nil {
		return domain.ImportRecord{}, fmt.Errorf("%s: %w", name, err)
	}

	rec := domain.ImportRecord{
		Title:       getStringFromMeta(metaData, "title", strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))),
		URL:         getStringFromMeta(metaData, "url", getStringFromMeta(metaData, "source", "")),
		Description: string(bytes.TrimSpace(stripFrontMatter(src))),
	}
	if public, ok := metaData["public"].(bool); ok {
		flag := domain.FlexBool(public)
		rec.IsPublic = &flag
	}
	return rec, nil
}

// ReadClippings parses every .md file directly under dir, in name order.
// Files that cannot be read or parsed are reported by name and skipped.
func (m *Markdown) ReadClippings(dir string) ([]domain.ImportRecord, map[string]error, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read clippings directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var records []domain.ImportRecord
	failed := make(map[string]error)
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			failed[name] = err
			continue
		}
		rec, err := m.ParseClipping(name, content)
		if err != nil {
			failed[name] = err
			continue
		}
		records = append(records, rec)
	}
	return records, failed, nil
}

// stripFrontMatter drops a leading block fenced by --- lines
func stripFrontMatter(src []byte) []byte {
	lines := bytes.SplitAfter(src, []byte("\n"))
	if len(lines) == 0 || strings.TrimSpace(string(lines[0])) != "---" {
		return src
	}
	offset := len(lines[0])
	for _, line := range lines[1:] {
		offset += len(line)
		if strings.TrimSpace(string(line)) == "---" {
			return src[offset:]
		}
	}
	return src
}

func getStringFromMeta(meta map[string]interface{}, key, defaultValue string) string {
	if value, ok := meta[key]; ok {
		if str, ok := value.(string); ok && strings.TrimSpace(str) != "" {
			return strings.TrimSpace(str)
		}
	}
	return defaultValue
}
