// Package source enumerates and reads the JSON documents of an input directory.
//
// Every regular file directly under the directory is read in name order.
// Files whose name ends in .json hold exactly one document; any other file
// holds documents separated by a delimiter, blank rows ignored. A trailing
// .gz, .zst, .sz or .snappy suffix is decompressed transparently and does not
// count toward the .json check.
package source

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"

	"github.com/usestring/malort/pkg/stats"
)

// DefaultDelimiter separates documents in non-.json files.
const DefaultDelimiter = "\n"

const maxDocumentSize = 64 << 20

// File is one input file of a directory.
type File struct {
	Name  string
	Path  string
	Index int
	Size  int64
}

// Document is one raw document. Data is only valid during the callback it
// is handed to.
type Document struct {
	File  *File
	Index int
	Data  []byte
}

// List returns the regular files directly under root, sorted by name.
func List(fsys afero.Fs, root string) ([]File, error) {
	infos, err := afero.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	files := make([]File, 0, len(infos))
	for _, info := range infos {
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, File{
			Name:  info.Name(),
			Path:  filepath.Join(root, info.Name()),
			Index: len(files),
			Size:  info.Size(),
		})
	}
	return files, nil
}

// Open opens name, decompressing it according to its suffix.
func Open(fsys afero.Fs, name string) (io.ReadCloser, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}

	switch compression(name) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening gzip stream %s: %w", name, err)
		}
		return &stackedCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening zstd stream %s: %w", name, err)
		}
		rc := zr.IOReadCloser()
		return &stackedCloser{Reader: rc, closers: []io.Closer{rc, f}}, nil
	case ".sz", ".snappy":
		return &stackedCloser{Reader: snappy.NewReader(f), closers: []io.Closer{f}}, nil
	default:
		return f, nil
	}
}

// Read calls fn for every document of file, in order. It stops at the first
// error fn returns.
func Read(fsys afero.Fs, file *File, delimiter string, fn func(Document) error) error {
	rc, err := Open(fsys, file.Path)
	if err != nil {
		return err
	}
	defer rc.Close()

	if IsSingleDocument(file.Name) {
		data, err := io.ReadAll(rc)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file.Name, err)
		}
		return fn(Document{File: file, Index: 0, Data: data})
	}

	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxDocumentSize)
	sc.Split(splitOn([]byte(delimiter)))

	index := 0
	for sc.Scan() {
		row := sc.Bytes()
		if len(bytes.TrimSpace(row)) == 0 {
			continue
		}
		if err := fn(Document{File: file, Index: index, Data: row}); err != nil {
			return err
		}
		index++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", file.Name, err)
	}
	return nil
}

// Parse turns a raw document into values to walk. Without a selector the
// document itself is the only value.
func Parse(data []byte, sel *Selector) ([]stats.Value, error) {
	if sel != nil {
		return sel.Select(data)
	}
	v, err := stats.Decode(data)
	if err != nil {
		return nil, err
	}
	return []stats.Value{v}, nil
}

// IsSingleDocument reports whether name holds exactly one JSON document.
func IsSingleDocument(name string) bool {
	base := name[:len(name)-len(compression(name))]
	return strings.EqualFold(filepath.Ext(base), ".json")
}

func compression(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".gz", ".zst", ".sz", ".snappy":
		return ext
	}
	return ""
}

// splitOn is a bufio.SplitFunc that splits on an arbitrary delimiter.
func splitOn(delim []byte) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.Index(data, delim); i >= 0 {
			return i + len(delim), data[:i], nil
		}
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	}
}

type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
