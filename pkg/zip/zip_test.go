package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"
)

func TestArchiveRoundTrip(t *testing.T) {
	files := []File{
		{Name: "01.txt", Data: []byte("first"), Modified: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{Name: "02.txt", Data: []byte("second")},
	}
	data, err := Archive(files)
	if err != nil {
		t.Fatalf("Archive error: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewReader error: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("files = %d", len(zr.File))
	}
	for i, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		got, _ := io.ReadAll(rc)
		_ = rc.Close()
		if f.Name != files[i].Name || !bytes.Equal(got, files[i].Data) {
			t.Fatalf("entry %d mismatch: %s %q", i, f.Name, got)
		}
	}
}
