package models

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Model represents a downloadable Vosk model
type Model struct {
	Name        string
	Language    string
	Size        string
	URL         string
	Description string
}

// AvailableModels lists the models that can be downloaded
var AvailableModels = []Model{
	{
		Name:        "vosk-model-small-ru-0.22",
		Language:    "ru",
		Size:        "45M",
		URL:         "https://alphacephei.com/vosk/models/vosk-model-small-ru-0.22.zip",
		Description: "Lightweight Russian model for desktop and embedded use",
	},
	{
		Name:        "vosk-model-ru-0.42",
		Language:    "ru",
		Size:        "1.8G",
		URL:         "https://alphacephei.com/vosk/models/vosk-model-ru-0.42.zip",
		Description: "Large Russian model, slower but more accurate",
	},
	{
		Name:        "vosk-model-small-en-us-0.15",
		Language:    "en-US",
		Size:        "40M",
		URL:         "https://alphacephei.com/vosk/models/vosk-model-small-en-us-0.15.zip",
		Description: "Lightweight English model, fast but less accurate",
	},
}

// DefaultModelName is the model used when none is configured
const DefaultModelName = "vosk-model-small-ru-0.22"

// ErrModelMissing is matched by every MissingError
var ErrModelMissing = errors.New("speech recognition model not found")

// MissingError reports a model that is not present on disk
type MissingError struct {
	Name string
	Path string
}

// Error implements the error interface
func (e *MissingError) Error() string {
	return fmt.Sprintf("model %s not found at %s", e.Name, e.Path)
}

// Is makes errors.Is(err, ErrModelMissing) true
func (e *MissingError) Is(target error) bool { return target == ErrModelMissing }

// Registry manages models stored under one directory
type Registry struct {
	Dir string

	// HTTPClient is used for downloads (default: http.DefaultClient)
	HTTPClient *http.Client
}

// NewRegistry creates a registry rooted at dir, "models" when empty
func NewRegistry(dir string) *Registry {
	if dir == "" {
		dir = "models"
	}
	return &Registry{Dir: dir}
}

// FindModel finds a model by name in the catalog
func FindModel(name string) *Model {
	for i := range AvailableModels {
		if AvailableModels[i].Name == name {
			return &AvailableModels[i]
		}
	}
	return nil
}

// ModelForLanguage returns the first catalog model whose language starts with lang
func ModelForLanguage(lang string) string {
	for _, m := range AvailableModels {
		if strings.HasPrefix(strings.ToLower(m.Language), strings.ToLower(lang)) {
			return m.Name
		}
	}
	return DefaultModelName
}

// Path returns where a model lives, whether or not it is downloaded.
// A name containing a path separator is used as a path as-is.
func (r *Registry) Path(name string) string {
	if strings.ContainsRune(name, os.PathSeparator) || strings.ContainsRune(name, '/') {
		return name
	}
	return filepath.Join(r.Dir, name)
}

// IsDownloaded checks whether the model directory exists
func (r *Registry) IsDownloaded(name string) (bool, error) {
	info, err := os.Stat(r.Path(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// Ensure returns the model path or a MissingError
func (r *Registry) Ensure(name string) (string, error) {
	ok, err := r.IsDownloaded(name)
	if err != nil {
		return "", fmt.Errorf("failed to check for model: %w", err)
	}
	if !ok {
		return "", &MissingError{Name: name, Path: r.Path(name)}
	}
	return r.Path(name), nil
}

// ListDownloaded lists the model directories present in the registry
func (r *Registry) ListDownloaded() ([]string, error) {
	entries, err := os.ReadDir(r.Dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read models directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "vosk-model-") {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Download fetches a catalog model and extracts it into the registry
func (r *Registry) Download(ctx context.Context, name string, progress func(downloaded, total int64)) error {
	model := FindModel(name)
	if model == nil {
		return fmt.Errorf("unknown model: %s", name)
	}
	return r.download(ctx, model.URL, progress)
}

func (r *Registry) download(ctx context.Context, url string, progress func(downloaded, total int64)) error {
	if err := os.MkdirAll(r.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	tmp, err := os.CreateTemp(r.Dir, "download-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	client := r.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if progress != nil {
		body = &progressReader{r: resp.Body, total: resp.ContentLength, fn: progress}
	}

	if _, err := io.Copy(tmp, body); err != nil {
		return fmt.Errorf("download error: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := extractZip(tmp.Name(), r.Dir); err != nil {
		return fmt.Errorf("failed to extract model: %w", err)
	}

	return nil
}

type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	fn    func(downloaded, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.fn(p.read, p.total)
	}
	return n, err
}

// extractZip extracts a zip file to the specified directory
func extractZip(zipPath, destDir string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer zr.Close()

	root := filepath.Clean(destDir) + string(os.PathSeparator)

	for _, f := range zr.File {
		fpath := filepath.Join(destDir, f.Name)

		// Reject entries escaping destDir (zip slip)
		if !strings.HasPrefix(fpath, root) {
			return fmt.Errorf("illegal file path: %s", fpath)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
			return err
		}

		if err := extractFile(f, fpath); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
