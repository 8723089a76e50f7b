// Package upload represents files uploaded with a request. Raw environment descriptors are
// zipped into a tree of files with Group and unzipped back with Ungroup.
package upload

import (
	"fmt"
	"io"
	"os"

	"github.com/indigo-web/message/env"
	"github.com/indigo-web/message/errors"
	"github.com/indigo-web/message/http/stream"
)

// File is a single uploaded file, stored in a temporary location until moved.
type File struct {
	tmpName         string
	size            int64
	errCode         int
	clientFilename  string
	clientMediaType string
	moved           bool
}

func NewFile(tmpName string, size int64, errCode int, clientFilename, clientMediaType string) *File {
	return &File{
		tmpName:         tmpName,
		size:            size,
		errCode:         errCode,
		clientFilename:  clientFilename,
		clientMediaType: clientMediaType,
	}
}

func (f *File) ClientFilename() string {
	return f.clientFilename
}

func (f *File) ClientMediaType() string {
	return f.clientMediaType
}

func (f *File) Size() int64 {
	return f.size
}

// Error returns the upload error code, env.UploadOK on success.
func (f *File) Error() int {
	return f.errCode
}

// TmpName returns the temporary location of the file.
func (f *File) TmpName() string {
	return f.tmpName
}

// Stream reads the uploaded content into a memory stream.
func (f *File) Stream() (*stream.Memory, error) {
	if err := f.available(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(f.tmpName)
	if err != nil {
		return nil, err
	}

	return stream.FromBytes(content), nil
}

// MoveTo moves the file into the target path. It can be done only once.
func (f *File) MoveTo(target string) error {
	if err := f.available(); err != nil {
		return err
	}

	if len(target) == 0 {
		return fmt.Errorf("%w: empty target path", errors.ErrUploadFailed)
	}

	if err := os.Rename(f.tmpName, target); err != nil {
		// rename fails across devices, fallback to copying
		if err = copyFile(f.tmpName, target); err != nil {
			return fmt.Errorf("%w: %s", errors.ErrUploadFailed, err)
		}

		_ = os.Remove(f.tmpName)
	}

	f.moved = true
	return nil
}

func (f *File) available() error {
	if f.moved {
		return errors.ErrFileMoved
	}

	if f.errCode != env.UploadOK {
		return fmt.Errorf("%w: error code %d", errors.ErrUploadFailed, f.errCode)
	}

	return nil
}

func copyFile(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return err
	}

	defer src.Close()

	dst, err := os.Create(to)
	if err != nil {
		return err
	}

	if _, err = io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}

	return dst.Close()
}
