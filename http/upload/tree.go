package upload

import (
	"fmt"
	"maps"
	"strconv"

	"github.com/indigo-web/message/env"
	"github.com/indigo-web/message/errors"
)

// Tree holds uploaded files keyed by the form field name. Array-like fields, e.g.
// `photos[]` or `doc[front]`, are represented by nested trees.
type Tree map[string]Entry

// Entry is either a single File or a Nested tree.
type Entry struct {
	File   *File
	Nested Tree
}

// Group zips the parallel descriptor trees of the environment into a tree of files.
func Group(files env.Files) (Tree, error) {
	tree := make(Tree, len(files))

	for field, desc := range files {
		entry, err := group(field, desc)
		if err != nil {
			return nil, err
		}

		tree[field] = entry
	}

	return tree, nil
}

func group(field string, desc env.FileDescriptor) (Entry, error) {
	if desc.Name.IsLeaf() {
		file, err := leafFile(field, desc)
		return Entry{File: file}, err
	}

	nested := make(Tree, len(desc.Name.Children))
	for key, name := range desc.Name.Children {
		sub := env.FileDescriptor{
			Name:    name,
			Type:    desc.Type.Children[key],
			TmpName: desc.TmpName.Children[key],
			Error:   desc.Error.Children[key],
			Size:    desc.Size.Children[key],
		}

		for _, node := range []env.Node{sub.Type, sub.TmpName, sub.Error, sub.Size} {
			if node.IsLeaf() != name.IsLeaf() {
				return Entry{}, fmt.Errorf("%w: field %s[%s]", errors.ErrInvalidUpload, field, key)
			}
		}

		entry, err := group(field+"["+key+"]", sub)
		if err != nil {
			return Entry{}, err
		}

		nested[key] = entry
	}

	return Entry{Nested: nested}, nil
}

func leafFile(field string, desc env.FileDescriptor) (*File, error) {
	size, err := strconv.ParseInt(desc.Size.Value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: size of %s: %q", errors.ErrInvalidUpload, field, desc.Size.Value)
	}

	code, err := strconv.Atoi(desc.Error.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: error code of %s: %q", errors.ErrInvalidUpload, field, desc.Error.Value)
	}

	return NewFile(desc.TmpName.Value, size, code, desc.Name.Value, desc.Type.Value), nil
}

// Ungroup reverses Group, turning the tree back into parallel descriptor trees.
func Ungroup(tree Tree) env.Files {
	files := make(env.Files, len(tree))
	for field, entry := range tree {
		files[field] = ungroup(entry)
	}

	return files
}

func ungroup(entry Entry) env.FileDescriptor {
	if entry.File != nil {
		f := entry.File
		return env.FileDescriptor{
			Name:    env.Leaf(f.clientFilename),
			Type:    env.Leaf(f.clientMediaType),
			TmpName: env.Leaf(f.tmpName),
			Error:   env.Leaf(strconv.Itoa(f.errCode)),
			Size:    env.Leaf(strconv.FormatInt(f.size, 10)),
		}
	}

	desc := env.FileDescriptor{
		Name:    env.Node{Children: make(map[string]env.Node, len(entry.Nested))},
		Type:    env.Node{Children: make(map[string]env.Node, len(entry.Nested))},
		TmpName: env.Node{Children: make(map[string]env.Node, len(entry.Nested))},
		Error:   env.Node{Children: make(map[string]env.Node, len(entry.Nested))},
		Size:    env.Node{Children: make(map[string]env.Node, len(entry.Nested))},
	}

	for key, nested := range entry.Nested {
		sub := ungroup(nested)
		desc.Name.Children[key] = sub.Name
		desc.Type.Children[key] = sub.Type
		desc.TmpName.Children[key] = sub.TmpName
		desc.Error.Children[key] = sub.Error
		desc.Size.Children[key] = sub.Size
	}

	return desc
}

// Nest returns a tree with the file placed under the array-like field name. Empty segments,
// as in `photos[]`, take the next free numeric key. The passed tree isn't modified.
func Nest(tree Tree, field string, file *File) Tree {
	return nest(tree, env.FieldPath(field), file)
}

func nest(tree Tree, path []string, file *File) Tree {
	clone := make(Tree, len(tree)+1)
	maps.Copy(clone, tree)

	key := path[0]
	if len(key) == 0 {
		key = strconv.Itoa(len(tree))
	}

	if len(path) == 1 {
		clone[key] = Entry{File: file}
		return clone
	}

	clone[key] = Entry{Nested: nest(tree[key].Nested, path[1:], file)}
	return clone
}

// Files returns every file of the tree, in no particular order.
func (t Tree) Files() []*File {
	var files []*File
	for _, entry := range t {
		if entry.File != nil {
			files = append(files, entry.File)
			continue
		}

		files = append(files, entry.Nested.Files()...)
	}

	return files
}
