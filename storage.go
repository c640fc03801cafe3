package maskedit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// UploadFile is one file sent to Storage.Upload.
type UploadFile struct {
	Name        string
	Data        []byte
	ContentType string
	// Type is the storage area: "input", "temp" or "output".
	Type string
	// Subfolder is a path below the storage area, possibly empty.
	Subfolder string
}

// FileRef names a stored file.
type FileRef struct {
	Filename  string
	Type      string
	Subfolder string
}

// Storage uploads and fetches files from the host's file endpoints.
type Storage interface {
	// Upload stores f and returns the name the host stored it under.
	Upload(ctx context.Context, f UploadFile) (string, error)
	// View returns the contents of a stored file.
	View(ctx context.Context, ref FileRef) ([]byte, error)
}

// HTTPStorage talks to the host's /upload/image and /view endpoints.
type HTTPStorage struct {
	// BaseURL is the host root, e.g. "http://127.0.0.1:8188".
	BaseURL string
	// Client defaults to a client with a 30 second timeout.
	Client *http.Client
}

// NewHTTPStorage returns an HTTPStorage for the given host root.
func NewHTTPStorage(baseURL string) *HTTPStorage {
	return &HTTPStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (h *HTTPStorage) client() *http.Client {
	if h.Client != nil {
		return h.Client
	}
	return http.DefaultClient
}

type uploadResponse struct {
	Name      string `json:"name"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

// Upload posts f as multipart form data with the fields image, type and
// subfolder.
func (h *HTTPStorage) Upload(ctx context.Context, f UploadFile) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, f.Name))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	hdr.Set("Content-Type", ct)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", f.Name, err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return "", fmt.Errorf("upload %s: %w", f.Name, err)
	}
	if err := mw.WriteField("type", f.Type); err != nil {
		return "", fmt.Errorf("upload %s: %w", f.Name, err)
	}
	if err := mw.WriteField("subfolder", f.Subfolder); err != nil {
		return "", fmt.Errorf("upload %s: %w", f.Name, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", f.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/upload/image", &body)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", f.Name, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := h.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w: %v", f.Name, ErrUpload, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("upload %s: %w: status %s", f.Name, ErrUpload, resp.Status)
	}
	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("upload %s: %w: bad response: %v", f.Name, ErrUpload, err)
	}
	if out.Name == "" {
		out.Name = f.Name
	}
	return out.Name, nil
}

// View fetches /view?filename=…&type=…&subfolder=….
func (h *HTTPStorage) View(ctx context.Context, ref FileRef) ([]byte, error) {
	q := url.Values{}
	q.Set("filename", ref.Filename)
	q.Set("type", ref.Type)
	q.Set("subfolder", ref.Subfolder)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.BaseURL+"/view?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("view %s: %w", ref.Filename, err)
	}
	resp, err := h.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("view %s: %w", ref.Filename, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("view %s: %w", ref.Filename, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("view %s: status %s", ref.Filename, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("view %s: %w", ref.Filename, err)
	}
	return data, nil
}

// DirStorage keeps files under Root/<type>/<subfolder>/<name>, the layout
// of the host's own input, temp and output directories.
type DirStorage struct {
	Root string
}

func (d DirStorage) path(typ, subfolder, name string) (string, error) {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	if typ == "" {
		typ = "input"
	}
	sub := filepath.Clean("/" + subfolder)
	return filepath.Join(d.Root, filepath.Base(typ), sub, name), nil
}

// Upload writes f to disk, creating directories as needed.
func (d DirStorage) Upload(_ context.Context, f UploadFile) (string, error) {
	p, err := d.path(f.Type, f.Subfolder, f.Name)
	if err != nil {
		return "", fmt.Errorf("upload: %w: %v", ErrUpload, err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("upload %s: %w: %v", f.Name, ErrUpload, err)
	}
	if err := os.WriteFile(p, f.Data, 0o644); err != nil {
		return "", fmt.Errorf("upload %s: %w: %v", f.Name, ErrUpload, err)
	}
	return filepath.Base(p), nil
}

// View reads a stored file.
func (d DirStorage) View(_ context.Context, ref FileRef) ([]byte, error) {
	p, err := d.path(ref.Type, ref.Subfolder, ref.Filename)
	if err != nil {
		return nil, fmt.Errorf("view: %w", err)
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("view %s: %w", ref.Filename, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("view %s: %w", ref.Filename, err)
	}
	return data, nil
}

// MaskFileRef returns where saved mask files live.
func MaskFileRef(filename string) FileRef {
	return FileRef{Filename: filename, Type: "temp", Subfolder: "masks"}
}

// LoadMaskSet resolves a masks_data value: empty means no masks, a value
// ending in .json is fetched from the masks folder, anything else is parsed
// as an inline MaskSet document.
func LoadMaskSet(ctx context.Context, st Storage, masksData string) (MaskSet, error) {
	masksData = strings.TrimSpace(masksData)
	if masksData == "" {
		return MaskSet{}, nil
	}
	if !IsMaskFileRef(masksData) {
		return ParseMaskSet([]byte(masksData))
	}
	if st == nil {
		return nil, fmt.Errorf("load masks %s: no storage", masksData)
	}
	data, err := st.View(ctx, MaskFileRef(masksData))
	if err != nil {
		return nil, fmt.Errorf("load masks: %w", err)
	}
	return ParseMaskSet(data)
}
