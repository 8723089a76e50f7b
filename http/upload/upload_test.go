package upload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/indigo-web/message/env"
	"github.com/indigo-web/message/errors"
	"github.com/stretchr/testify/require"
)

var fileComparer = cmp.AllowUnexported(File{})

func TestGroup(t *testing.T) {
	t.Run("flat and nested", func(t *testing.T) {
		p := env.NewProcess()
		require.NoError(t, p.AddUpload("avatar", "me.png", "image/png", []byte("png")))
		require.NoError(t, p.AddUpload("doc[front]", "front.jpg", "image/jpeg", []byte("front")))
		require.NoError(t, p.AddUpload("doc[back]", "back.jpg", "image/jpeg", []byte("back!")))

		tree, err := Group(p.UploadedFiles())
		require.NoError(t, err)

		avatar := tree["avatar"].File
		require.NotNil(t, avatar)
		require.Equal(t, "me.png", avatar.ClientFilename())
		require.Equal(t, "image/png", avatar.ClientMediaType())
		require.Equal(t, int64(3), avatar.Size())
		require.Equal(t, env.UploadOK, avatar.Error())

		doc := tree["doc"].Nested
		require.Len(t, doc, 2)
		require.Equal(t, "front.jpg", doc["front"].File.ClientFilename())
		require.Equal(t, int64(5), doc["back"].File.Size())
		require.Len(t, tree.Files(), 3)
	})

	t.Run("ungroup reverses group", func(t *testing.T) {
		p := env.NewProcess()
		require.NoError(t, p.AddUpload("photos[]", "a.png", "image/png", []byte("a")))
		require.NoError(t, p.AddUpload("photos[]", "b.png", "image/png", []byte("b")))
		require.NoError(t, p.AddUpload("single", "c.txt", "text/plain", []byte("c")))

		tree, err := Group(p.UploadedFiles())
		require.NoError(t, err)
		require.Empty(t, cmp.Diff(p.UploadedFiles(), Ungroup(tree)))

		regrouped, err := Group(Ungroup(tree))
		require.NoError(t, err)
		require.Empty(t, cmp.Diff(tree, regrouped, fileComparer))
	})

	t.Run("mismatched structure", func(t *testing.T) {
		files := env.Files{
			"doc": {
				Name:    env.Node{Children: map[string]env.Node{"0": env.Leaf("a")}},
				Type:    env.Leaf("text/plain"),
				TmpName: env.Node{Children: map[string]env.Node{"0": env.Leaf("/tmp/a")}},
				Error:   env.Node{Children: map[string]env.Node{"0": env.Leaf("0")}},
				Size:    env.Node{Children: map[string]env.Node{"0": env.Leaf("1")}},
			},
		}

		_, err := Group(files)
		require.ErrorIs(t, err, errors.ErrInvalidUpload)
	})

	t.Run("malformed size", func(t *testing.T) {
		files := env.Files{
			"f": {
				Name:    env.Leaf("a"),
				Type:    env.Leaf("text/plain"),
				TmpName: env.Leaf("/tmp/a"),
				Error:   env.Leaf("0"),
				Size:    env.Leaf("lots"),
			},
		}

		_, err := Group(files)
		require.ErrorIs(t, err, errors.ErrInvalidUpload)
	})
}

func TestNest(t *testing.T) {
	a := NewFile("/tmp/a", 1, env.UploadOK, "a", "text/plain")
	b := NewFile("/tmp/b", 1, env.UploadOK, "b", "text/plain")

	tree := Nest(Tree{}, "docs[]", a)
	tree2 := Nest(tree, "docs[]", b)
	tree3 := Nest(tree2, "meta[x][y]", a)

	want := Tree{
		"docs": {Nested: Tree{"0": {File: a}, "1": {File: b}}},
		"meta": {Nested: Tree{"x": {Nested: Tree{"y": {File: a}}}}},
	}

	require.Empty(t, cmp.Diff(want, tree3, fileComparer))
	require.Len(t, tree["docs"].Nested, 1, "source tree must stay untouched")
}

func TestFile(t *testing.T) {
	newUpload := func(t *testing.T, content string) *File {
		tmp := filepath.Join(t.TempDir(), "upload")
		require.NoError(t, os.WriteFile(tmp, []byte(content), 0o600))
		return NewFile(tmp, int64(len(content)), env.UploadOK, "note.txt", "text/plain")
	}

	t.Run("stream", func(t *testing.T) {
		f := newUpload(t, "Hello")
		s, err := f.Stream()
		require.NoError(t, err)
		require.Equal(t, "Hello", s.String())
	})

	t.Run("move", func(t *testing.T) {
		f := newUpload(t, "Hello")
		target := filepath.Join(t.TempDir(), "moved.txt")
		require.NoError(t, f.MoveTo(target))

		content, err := os.ReadFile(target)
		require.NoError(t, err)
		require.Equal(t, "Hello", string(content))

		require.ErrorIs(t, f.MoveTo(target), errors.ErrFileMoved)
		_, err = f.Stream()
		require.ErrorIs(t, err, errors.ErrFileMoved)
	})

	t.Run("failed upload", func(t *testing.T) {
		f := NewFile("", 0, env.UploadErrNoFile, "", "")
		_, err := f.Stream()
		require.ErrorIs(t, err, errors.ErrUploadFailed)
	})
}
