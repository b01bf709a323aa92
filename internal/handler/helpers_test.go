package handler_test

import (
	"net/url"
	"strconv"
	"testing"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return u
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
