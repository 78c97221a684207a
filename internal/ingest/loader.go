// Package ingest is the only package that touches the filesystem. It
// turns a directory of source files into in-memory {name, content}
// values; everything downstream operates on text.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// File is one raw source file handed to the parsing registry.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// LoadDir reads every supported file in dir: .csv and .txt as text,
// .xlsx flattened to CSV text via the first sheet. Dotfiles and unknown
// extensions are skipped with a log line, never an error.
func LoadDir(dir string, logger *zap.Logger) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, e.Name())

		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".txt":
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			files = append(files, File{Name: e.Name(), Content: string(data)})

		case ".xlsx":
			content, err := flattenWorkbook(path)
			if err != nil {
				logger.Warn("skipping unreadable workbook",
					zap.String("file", e.Name()),
					zap.Error(err),
				)
				continue
			}
			files = append(files, File{Name: e.Name(), Content: content})

		default:
			logger.Debug("skipping unsupported file", zap.String("file", e.Name()))
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// flattenWorkbook converts the first sheet of an xlsx workbook into
// semicolon-separated CSV text so the registry's text parsers can score
// and parse it like any other source.
func flattenWorkbook(path string) (string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				sb.WriteByte(';')
			}
			// Cells containing the delimiter get quoted like any CSV writer would.
			if strings.ContainsAny(cell, ";\"\n") {
				cell = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
			}
			sb.WriteString(cell)
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
