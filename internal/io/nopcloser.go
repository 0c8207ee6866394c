package io

import (
	"bytes"
)

// BytesNopCloser 可重复读取的请求体，重试前 Seek 回起点即可重新发送
type BytesNopCloser struct {
	r *bytes.Reader
	b []byte
}

func NewBytesNopCloser(b []byte) *BytesNopCloser {
	return &BytesNopCloser{r: bytes.NewReader(b), b: b}
}

func (nc *BytesNopCloser) Read(p []byte) (int, error) {
	return nc.r.Read(p)
}

func (nc *BytesNopCloser) Seek(offset int64, whence int) (int64, error) {
	return nc.r.Seek(offset, whence)
}

func (nc *BytesNopCloser) Size() int64 {
	return nc.r.Size()
}

func (nc *BytesNopCloser) Close() error {
	return nil
}

func (nc *BytesNopCloser) Bytes() []byte {
	return nc.b
}
