package batch

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

var supported = regexp.MustCompile(`(?i)\.(jpe?g|jpe|jfif|png|gif|tiff?|bmp|webp|nef|cr2|arw|dng|raf|orf|rw2|pef|srw)$`)

// File is a source image and its path relative to the input root.
type File struct {
	Path string
	Rel  string
}

// Collect walks root and returns every supported image under it, sorted
// by relative path.
func Collect(root string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supported.MatchString(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, File{Path: path, Rel: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}

// Prepare returns the folder holding the input images. A ZIP input is
// extracted to a temporary folder which cleanup removes.
func Prepare(input string) (dir string, cleanup func(), err error) {
	cleanup = func() {}
	info, err := os.Stat(input)
	if err != nil {
		return "", cleanup, err
	}
	if info.IsDir() || !strings.EqualFold(filepath.Ext(input), ".zip") {
		return input, cleanup, nil
	}

	dir, err = os.MkdirTemp("", "photo_processing_")
	if err != nil {
		return "", cleanup, err
	}
	cleanup = func() { os.RemoveAll(dir) }
	if _, err = Extract(input, dir); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return dir, cleanup, nil
}

// Extract writes the supported images of the ZIP archive src into dir
// and returns how many were extracted.
func Extract(src, dir string) (int, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	var n int
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !supported.MatchString(f.Name) {
			continue
		}
		target := filepath.Join(dir, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return n, fmt.Errorf("illegal file path in archive: %s", f.Name)
		}
		if err := extractFile(f, target); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	w, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, rc); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Archive zips the regular files of dir into dst, storing them under
// a folder named after dir.
func Archive(dir, dst string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	base := filepath.Base(dir)
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := addFile(zw, filepath.Join(dir, e.Name()), base+"/"+e.Name()); err != nil {
			zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}

func addFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// ProjectDir creates and returns the dated output folder under base.
func ProjectDir(base string, now time.Time) (string, error) {
	dir := filepath.Join(base, now.Format("2006-01-02"))
	return dir, os.MkdirAll(dir, 0755)
}
