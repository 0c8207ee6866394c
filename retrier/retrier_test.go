//go:build unit
// +build unit

package retrier_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
	"testing"

	"github.com/rootnroll/go-sdk/retrier"
)

func TestStatusCodeRetrier(t *testing.T) {
	r := retrier.NewStatusCodeRetrier(502)
	if r.Retry(&http.Response{StatusCode: 502}, nil, nil) != retrier.RetryRequest {
		t.Fatal("502 should be retried")
	}
	for _, code := range []int{200, 201, 204, 400, 404, 500, 503} {
		if r.Retry(&http.Response{StatusCode: code}, nil, nil) != retrier.DontRetry {
			t.Fatalf("%d should not be retried", code)
		}
	}
	if r.Retry(nil, nil, nil) != retrier.DontRetry {
		t.Fatal("empty result should not be retried")
	}
}

func TestStatusCodeRetrierErrors(t *testing.T) {
	r := retrier.NewStatusCodeRetrier()
	refused := &url.Error{Op: "Get", URL: "http://localhost", Err: &net.OpError{
		Op: "dial", Net: "tcp", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED},
	}}
	if r.Retry(nil, refused, nil) != retrier.RetryRequest {
		t.Fatal("connection refused should be retried")
	}
	notFound := &url.Error{Op: "Get", URL: "http://nowhere.invalid", Err: &net.OpError{
		Op: "dial", Net: "tcp", Err: &net.DNSError{Name: "nowhere.invalid", IsNotFound: true},
	}}
	if r.Retry(nil, notFound, nil) != retrier.DontRetry {
		t.Fatal("unknown host should not be retried")
	}
	if r.Retry(nil, &url.Error{Op: "Get", URL: "http://localhost", Err: io.ErrUnexpectedEOF}, nil) != retrier.RetryRequest {
		t.Fatal("unexpected EOF should be retried")
	}
	if r.Retry(nil, &url.Error{Op: "Get", URL: "http://localhost", Err: context.Canceled}, nil) != retrier.DontRetry {
		t.Fatal("canceled request should not be retried")
	}
	if r.Retry(nil, errors.New("boom"), nil) != retrier.DontRetry {
		t.Fatal("unknown error should not be retried")
	}
}

func TestNeverRetrier(t *testing.T) {
	if retrier.NewNeverRetrier().Retry(&http.Response{StatusCode: 502}, nil, nil) != retrier.DontRetry {
		t.Fatal("never retrier retried")
	}
}

func TestIsErrorRetryable(t *testing.T) {
	if retrier.IsErrorRetryable(nil) {
		t.Fatal("nil error is not retryable")
	}
	if !retrier.IsErrorRetryable(syscall.ECONNRESET) {
		t.Fatal("connection reset should be retryable")
	}
}

func TestIdempotentRetrier(t *testing.T) {
	r := retrier.NewIdempotentRetrier(retrier.NewStatusCodeRetrier(502))
	get, _ := http.NewRequest(http.MethodGet, "http://localhost/servers/1", nil)
	post, _ := http.NewRequest(http.MethodPost, "http://localhost/servers", nil)

	if r.Retry(&http.Response{StatusCode: 502}, nil, &retrier.RetrierOptions{Request: get}) != retrier.RetryRequest {
		t.Fatal("GET 502 should be retried")
	}
	if r.Retry(&http.Response{StatusCode: 502, Request: post}, nil, nil) != retrier.DontRetry {
		t.Fatal("POST 502 should not be retried")
	}
	if r.Retry(&http.Response{StatusCode: 500}, nil, &retrier.RetrierOptions{Request: get}) != retrier.DontRetry {
		t.Fatal("500 should not be retried")
	}

	refused := &url.Error{Op: "Post", URL: "http://localhost", Err: &net.OpError{
		Op: "dial", Net: "tcp", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED},
	}}
	if r.Retry(nil, refused, &retrier.RetrierOptions{Request: post}) != retrier.RetryRequest {
		t.Fatal("POST should be retried when the connection was refused")
	}
	if r.Retry(nil, &url.Error{Op: "Post", URL: "http://localhost", Err: io.ErrUnexpectedEOF}, &retrier.RetrierOptions{Request: post}) != retrier.DontRetry {
		t.Fatal("POST should not be retried after it may have been sent")
	}
}
