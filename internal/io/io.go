package io

import (
	"bytes"
	"io"
	"strings"
)

func ReadAll(r io.Reader) ([]byte, error) {
	switch b := r.(type) {
	case *BytesNopCloser:
		_, err := b.Seek(0, io.SeekEnd)
		return b.Bytes(), err
	default:
		return io.ReadAll(r)
	}
}

func SinkAll(r io.Reader) (err error) {
	switch b := r.(type) {
	case *BytesNopCloser:
		_, err = b.Seek(0, io.SeekEnd)
	case *bytes.Buffer:
		b.Truncate(0)
	case *bytes.Reader:
		_, err = b.Seek(0, io.SeekEnd)
	case *strings.Reader:
		_, err = b.Seek(0, io.SeekEnd)
	default:
		_, err = io.Copy(io.Discard, r)
	}
	return
}

// Rewind 将可 Seek 的 body 移回起点，不可 Seek 时返回 false
func Rewind(r io.Reader) bool {
	if r == nil {
		return true
	}
	seeker, ok := r.(io.Seeker)
	if !ok {
		return false
	}
	_, err := seeker.Seek(0, io.SeekStart)
	return err == nil
}
