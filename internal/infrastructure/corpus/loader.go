// Package corpus loads the raw labeled training data from a local
// directory. File names decide the label: files starting with "fake"
// carry fake articles, files starting with "true" or "real" carry real
// ones. Supported formats are CSV, zipped CSV, and HTML.
package corpus

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/DSdoesVS/fake-news-detector/internal/domain"
	"github.com/DSdoesVS/fake-news-detector/internal/ports"
)

// DirectorySource reads every recognized corpus file under one directory.
type DirectorySource struct {
	dir    string
	logger *slog.Logger
}

var _ ports.CorpusSource = (*DirectorySource)(nil)

// NewDirectorySource points the loader at a data directory.
func NewDirectorySource(dir string, logger *slog.Logger) *DirectorySource {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectorySource{dir: dir, logger: logger}
}

// Load walks the directory and returns all labeled documents. Files
// whose name does not reveal a label are skipped with a warning.
func (s *DirectorySource) Load(ctx context.Context) ([]domain.Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir %s: %w", s.dir, err)
	}

	var docs []domain.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		label, ok := labelFromName(name)
		if !ok {
			s.logger.Warn("skipping unlabeled corpus file", "file", name)
			continue
		}

		path := filepath.Join(s.dir, name)
		var loaded []domain.Document
		switch strings.ToLower(filepath.Ext(name)) {
		case ".csv":
			loaded, err = loadCSVFile(path, label)
		case ".zip":
			loaded, err = loadZippedCSV(path, label)
		case ".html", ".htm":
			loaded, err = loadHTMLFile(path, label)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}

		s.logger.Debug("corpus file loaded", "file", name, "documents", len(loaded), "label", label.String())
		docs = append(docs, loaded...)
	}

	s.logger.Info("corpus loaded", "dir", s.dir, "documents", len(docs))
	return docs, nil
}

func labelFromName(name string) (domain.Label, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "fake"):
		return domain.LabelFake, true
	case strings.HasPrefix(lower, "true"), strings.HasPrefix(lower, "real"):
		return domain.LabelReal, true
	}
	return 0, false
}

func loadCSVFile(path string, label domain.Label) ([]domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return parseCSV(f, label)
}

// loadZippedCSV reads every CSV inside the archive, mirroring the
// Fake.csv.zip / True.csv.zip distribution layout of the dataset.
func loadZippedCSV(path string, label domain.Label) ([]domain.Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var docs []domain.Document
	for _, file := range r.File {
		if strings.ToLower(filepath.Ext(file.Name)) != ".csv" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s in zip: %w", file.Name, err)
		}
		loaded, err := parseCSV(rc, label)
		closeErr := rc.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s in zip: %w", file.Name, err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("close %s in zip: %w", file.Name, closeErr)
		}
		docs = append(docs, loaded...)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("archive contains no csv files")
	}
	return docs, nil
}

// parseCSV expects a header row carrying "title" and/or "text" columns.
func parseCSV(r io.Reader, label domain.Label) ([]domain.Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	titleIdx, textIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "title":
			titleIdx = i
		case "text", "content", "body":
			textIdx = i
		}
	}
	if titleIdx < 0 && textIdx < 0 {
		return nil, fmt.Errorf("no title or text column in header %v", header)
	}

	var docs []domain.Document
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		doc := domain.Document{Label: label}
		if titleIdx >= 0 && titleIdx < len(record) {
			doc.Title = strings.TrimSpace(record[titleIdx])
		}
		if textIdx >= 0 && textIdx < len(record) {
			doc.Text = strings.TrimSpace(record[textIdx])
		}
		if doc.Title == "" && doc.Text == "" {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
