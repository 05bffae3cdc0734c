package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/tapdecode/pkg/decoder"
)

// Format names an input trace encoding.
type Format string

const (
	FormatAuto Format = ""
	FormatText Format = "text"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a user-supplied format name. "auto" and "" select
// detection by extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text", "jtr", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	}
	return FormatAuto, fmt.Errorf("trace: unknown input format %q", s)
}

// DetectFormat picks a format from the file extension, defaulting to text.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatText
}

// Source is a frame stream backed by a file.
type Source interface {
	decoder.Source
	Close() error
}

type textSource struct {
	*decoder.SliceSource
}

func (textSource) Close() error { return nil }

type csvSource struct {
	*CSVReader
	file *os.File
}

func (s csvSource) Close() error { return s.file.Close() }

// Open opens a trace file. Text traces are parsed in full before the first
// frame is returned; CSV is streamed.
func Open(path string, format Format) (Source, error) {
	if format == FormatAuto {
		format = DetectFormat(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	switch format {
	case FormatCSV:
		reader, err := NewCSVReader(file)
		if err != nil {
			file.Close()
			return nil, err
		}
		return csvSource{CSVReader: reader, file: file}, nil

	case FormatText:
		defer file.Close()
		parser, err := NewTextParser()
		if err != nil {
			return nil, err
		}
		frames, err := parser.Parse(filepath.Base(path), file)
		if err != nil {
			return nil, err
		}
		return textSource{decoder.NewSliceSource(frames)}, nil
	}

	file.Close()
	return nil, fmt.Errorf("trace: unknown input format %q", format)
}
