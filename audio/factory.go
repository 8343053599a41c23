// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"os"
)

// ReaderFactory opens audio files through the decoders of a Registry.
type ReaderFactory struct {
	Registry *Registry
}

// OpenSource decodes path with the decoder registered for its extension.
// Closing the returned Source closes the file.
func (f ReaderFactory) OpenSource(path string) (Source, error) {
	dec, ok := f.Registry.ForPath(path)
	if !ok {
		return nil, &CreateError{Path: path, Err: ErrUnsupportedFormat}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &CreateError{Path: path, Err: err}
	}

	src, err := dec.Decode(file)
	if err != nil {
		_ = file.Close()
		return nil, &CreateError{Path: path, Err: err}
	}

	return &fileSource{Source: src, file: file}, nil
}

// Open decodes path entirely into memory.
func (f ReaderFactory) Open(path string) (*MemoryReader, error) {
	src, err := f.OpenSource(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	r, err := NewMemoryReader(src)
	if err != nil {
		return nil, &CreateError{Path: path, Err: err}
	}

	return r, nil
}

type fileSource struct {
	Source
	file *os.File
}

func (s *fileSource) Close() error {
	srcErr := s.Source.Close()
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", s.file.Name(), err)
	}
	return srcErr
}
