package env

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dchest/uniuri"
)

// Node is a single value of an uploaded file descriptor. It is either a leaf value, or a
// nested level keyed by the sub-field name when the form field was array-like, e.g.
// `photos[]` or `doc[front]`.
type Node struct {
	Value    string
	Children map[string]Node
}

func Leaf(value string) Node {
	return Node{Value: value}
}

func (n Node) IsLeaf() bool {
	return n.Children == nil
}

// FileDescriptor describes uploaded files of a single form field as parallel trees: the
// same path in each of them belongs to the same file.
type FileDescriptor struct {
	Name, Type, TmpName, Error, Size Node
}

// Files is the raw uploaded files storage keyed by the top-level form field name.
type Files map[string]FileDescriptor

// Upload error codes.
const (
	UploadOK = iota
	UploadErrIniSize
	UploadErrFormSize
	UploadErrPartial
	UploadErrNoFile
	_
	UploadErrNoTmpDir
	UploadErrCantWrite
	UploadErrExtension
)

// FieldPath splits an array-like form field name into segments: `doc[front][]` gives
// ["doc", "front", ""]. Malformed brackets are kept as a part of the name.
func FieldPath(name string) []string {
	open := strings.IndexByte(name, '[')
	if open <= 0 || !strings.HasSuffix(name, "]") {
		return []string{name}
	}

	path := []string{name[:open]}
	rest := name[open:]

	for len(rest) > 0 {
		if rest[0] != '[' {
			return []string{name}
		}

		closing := strings.IndexByte(rest, ']')
		if closing == -1 {
			return []string{name}
		}

		path = append(path, rest[1:closing])
		rest = rest[closing+1:]
	}

	return path
}

// AddUpload stores the content into a temporary file and registers it under the form field
// name, which may be array-like. Empty sub-field segments are replaced by the next free
// numeric index.
func (p *Process) AddUpload(field, filename, mediaType string, content []byte) error {
	tmp := filepath.Join(os.TempDir(), "upload-"+uniuri.New())
	if err := os.WriteFile(tmp, content, 0o600); err != nil {
		return fmt.Errorf("store uploaded file: %w", err)
	}

	p.RegisterUpload(field, FileDescriptor{
		Name:    Leaf(filename),
		Type:    Leaf(mediaType),
		TmpName: Leaf(tmp),
		Error:   Leaf(strconv.Itoa(UploadOK)),
		Size:    Leaf(strconv.Itoa(len(content))),
	})

	return nil
}

// RegisterUpload adds a descriptor with leaf values under the form field name.
func (p *Process) RegisterUpload(field string, leaf FileDescriptor) {
	path := FieldPath(field)
	top := path[0]

	if len(path) == 1 {
		p.Files[top] = leaf
		return
	}

	desc := p.Files[top]
	sub := path[1:]
	sub = resolveIndexes(desc.Name, sub)
	desc.Name = insert(desc.Name, sub, leaf.Name)
	desc.Type = insert(desc.Type, sub, leaf.Type)
	desc.TmpName = insert(desc.TmpName, sub, leaf.TmpName)
	desc.Error = insert(desc.Error, sub, leaf.Error)
	desc.Size = insert(desc.Size, sub, leaf.Size)
	p.Files[top] = desc
}

// resolveIndexes replaces empty segments by the next free numeric key at their level.
func resolveIndexes(node Node, path []string) []string {
	resolved := make([]string, len(path))
	for i, segment := range path {
		if len(segment) == 0 {
			segment = strconv.Itoa(len(node.Children))
		}

		resolved[i] = segment
		node = node.Children[segment]
	}

	return resolved
}

func insert(node Node, path []string, leaf Node) Node {
	if len(path) == 0 {
		return leaf
	}

	children := make(map[string]Node, len(node.Children)+1)
	for k, v := range node.Children {
		children[k] = v
	}

	children[path[0]] = insert(children[path[0]], path[1:], leaf)

	return Node{Children: children}
}
