//go:build unit
// +build unit

package clientv2

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/rootnroll/go-sdk/credentials"
)

func TestAuthInterceptor(t *testing.T) {
	interceptor := NewAuthInterceptor(AuthConfig{
		Credentials: credentials.NewCredentials("alice", "s3cret"),
		BeforeSign: func(req *http.Request) {
			if authorization := req.Header.Get("Authorization"); authorization != "" {
				t.Fatal("Authorization header should be empty")
			}
		},
		AfterSign: func(req *http.Request) {
			if authorization := req.Header.Get("Authorization"); authorization == "" {
				t.Fatal("Authorization header should not be empty")
			} else if !strings.HasPrefix(authorization, "Basic ") {
				t.Fatal("Unexpected Authorization header")
			}
		},
	})
	c := NewClient(&testClient{statusCode: http.StatusOK}, interceptor)
	resp, err := Do(c, RequestParams{
		Context: nil,
		Method:  RequestMethodGet,
		Url:     "https://au.rootnroll.com/api/servers/123",
		Header:  nil,
		GetBody: nil,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatal("status code not 200")
	}
	if username, password, ok := resp.Request.BasicAuth(); !ok || username != "alice" || password != "s3cret" {
		t.Fatal("Unexpected basic auth")
	}
}

func TestAuthInterceptorMissingCredentials(t *testing.T) {
	var signErr error
	interceptor := NewAuthInterceptor(AuthConfig{
		Credentials: credentials.NewCredentials("", ""),
		SignError: func(req *http.Request, err error) {
			signErr = err
		},
	})
	c := NewClient(&testClient{statusCode: http.StatusOK}, interceptor)
	_, err := Do(c, RequestParams{Url: "https://au.rootnroll.com/api/servers/123"})
	if !errors.Is(err, credentials.ErrMissingCredentials) {
		t.Fatalf("Unexpected error: %v", err)
	}
	if signErr == nil {
		t.Fatal("SignError should be called")
	}
}
