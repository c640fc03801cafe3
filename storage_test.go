package maskedit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestHTTPStorageUpload(t *testing.T) {
	var gotType, gotSub, gotName, gotCT string
	var gotData []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/upload/image" {
			http.Error(w, "unexpected", http.StatusBadRequest)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("image")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		gotData, _ = io.ReadAll(f)
		gotName = hdr.Filename
		gotCT = hdr.Header.Get("Content-Type")
		gotType = r.FormValue("type")
		gotSub = r.FormValue("subfolder")
		_ = json.NewEncoder(w).Encode(map[string]string{"name": "stored_" + hdr.Filename, "subfolder": gotSub, "type": gotType})
	}))
	defer srv.Close()

	st := NewHTTPStorage(srv.URL + "/")
	name, err := st.Upload(context.Background(), UploadFile{
		Name:        "mask_1_2.json",
		Data:        []byte(`{"layer_0":null}`),
		ContentType: "application/json",
		Type:        "temp",
		Subfolder:   "masks",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if name != "stored_mask_1_2.json" {
		t.Errorf("name = %q", name)
	}
	if gotName != "mask_1_2.json" || gotCT != "application/json" {
		t.Errorf("part filename %q content type %q", gotName, gotCT)
	}
	if gotType != "temp" || gotSub != "masks" {
		t.Errorf("type %q subfolder %q", gotType, gotSub)
	}
	if string(gotData) != `{"layer_0":null}` {
		t.Errorf("data = %q", gotData)
	}
}

func TestHTTPStorageUploadEmptyNameFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	name, err := NewHTTPStorage(srv.URL).Upload(context.Background(), UploadFile{Name: "a.png", Type: "input"})
	if err != nil {
		t.Fatal(err)
	}
	if name != "a.png" {
		t.Errorf("name = %q, want a.png", name)
	}
}

func TestHTTPStorageUploadFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"bad body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			_, err := NewHTTPStorage(srv.URL).Upload(context.Background(), UploadFile{Name: "x.json"})
			if !errors.Is(err, ErrUpload) {
				t.Errorf("err = %v, want ErrUpload", err)
			}
		})
	}
}

func TestHTTPStorageView(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/view" || q.Get("type") != "temp" || q.Get("subfolder") != "masks" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		if q.Get("filename") != "found.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"layer_0":null}`))
	}))
	defer srv.Close()
	st := NewHTTPStorage(srv.URL)

	data, err := st.View(context.Background(), MaskFileRef("found.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"layer_0":null}` {
		t.Errorf("data = %q", data)
	}

	_, err = st.View(context.Background(), MaskFileRef("missing.json"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file err = %v, want ErrNotFound", err)
	}
}

func TestDirStorageRoundTrip(t *testing.T) {
	root := t.TempDir()
	st := DirStorage{Root: root}
	ctx := context.Background()

	name, err := st.Upload(ctx, UploadFile{Name: "mask.json", Data: []byte("{}"), Type: "temp", Subfolder: "masks"})
	if err != nil {
		t.Fatal(err)
	}
	if name != "mask.json" {
		t.Errorf("name = %q", name)
	}
	if _, err := os.Stat(filepath.Join(root, "temp", "masks", "mask.json")); err != nil {
		t.Errorf("file not at expected path: %v", err)
	}
	data, err := st.View(ctx, MaskFileRef("mask.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}" {
		t.Errorf("data = %q", data)
	}

	if _, err := st.View(ctx, FileRef{Filename: "nope.png"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}
}

func TestDirStorageConfinesPaths(t *testing.T) {
	root := t.TempDir()
	st := DirStorage{Root: root}
	name, err := st.Upload(context.Background(), UploadFile{Name: "../../evil.png", Data: []byte("x"), Subfolder: "../../up"})
	if err != nil {
		t.Fatal(err)
	}
	if name != "evil.png" {
		t.Errorf("name = %q, want evil.png", name)
	}
	if _, err := os.Stat(filepath.Join(root, "input", "up", "evil.png")); err != nil {
		t.Errorf("file should stay under root: %v", err)
	}
}

func TestLoadMaskSet(t *testing.T) {
	st := newMemStorage()
	st.put("temp", "masks", "saved.json", []byte(`{"layer_1":{"width":1,"height":1,"data":"/w=="}}`))
	ctx := context.Background()

	set, err := LoadMaskSet(ctx, st, "  ")
	if err != nil || len(set) != 0 {
		t.Errorf("empty: set %v err %v", set, err)
	}

	set, err = LoadMaskSet(ctx, st, `{"layer_0":{"width":1,"height":1,"data":"AA=="}}`)
	if err != nil || set.Layer(0) == nil {
		t.Errorf("inline: set %v err %v", set, err)
	}

	set, err = LoadMaskSet(ctx, st, "saved.json")
	if err != nil {
		t.Fatal(err)
	}
	if m := set.Layer(1); m == nil || m.Data != "/w==" {
		t.Errorf("file: layer_1 = %+v", m)
	}

	if _, err := LoadMaskSet(ctx, st, "gone.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file err = %v, want ErrNotFound", err)
	}
	if _, err := LoadMaskSet(ctx, nil, "gone.json"); err == nil {
		t.Error("file ref without storage should fail")
	}
	if _, err := LoadMaskSet(ctx, st, "{broken"); err == nil {
		t.Error("malformed inline data should fail")
	}
}
