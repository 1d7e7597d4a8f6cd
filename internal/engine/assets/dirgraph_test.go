package assets

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDirGraphList(t *testing.T) {
	root := t.TempDir()
	pkg := filepath.Join(root, "world")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(pkg, "stone.png"))
	if err := os.WriteFile(filepath.Join(pkg, "heights.dat"), []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}

	g := DirGraph{Roots: []string{root}}
	entries, err := g.List("world")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	kinds := map[string]Kind{}
	for _, e := range entries {
		kinds[e.Name] = e.Kind
	}
	if kinds["stone"] != KindTexture {
		t.Errorf("stone kind = %d, want texture", kinds["stone"])
	}
	if kinds["heights"] != KindRaw {
		t.Errorf("heights kind = %d, want raw", kinds["heights"])
	}
}

func TestDirGraphMissingPackage(t *testing.T) {
	g := DirGraph{Roots: []string{t.TempDir()}}
	if _, err := g.List("nope"); err == nil {
		t.Error("missing package should error")
	}
}

func TestDirGraphThroughCache(t *testing.T) {
	root := t.TempDir()
	pkg := filepath.Join(root, "world")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(pkg, "stone.png"))

	c := NewCache(DirGraph{Roots: []string{root}})
	defer c.Close()

	res, ok := c.Resolve(Tag{Package: "world", Name: "stone"})
	if !ok {
		t.Fatal("texture should resolve")
	}
	tex, ok := res.(*Texture)
	if !ok {
		t.Fatalf("resource type = %T, want *Texture", res)
	}
	if tex.Image == nil || tex.Image.Bounds().Dx() != 2 {
		t.Error("decoded image missing or wrong size")
	}
}
