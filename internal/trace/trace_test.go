package trace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFromRequestPropagatesCallID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/sensors", nil)
	r.Header.Set(HeaderCall, "call-123")
	r.Header.Set(HeaderInstance, "someone-elses-instance")

	tr := FromRequest(r, "my-instance")

	if tr.Call != "call-123" {
		t.Errorf("Call = %q, want propagated call-123", tr.Call)
	}
	if tr.Instance != "my-instance" {
		t.Errorf("Instance = %q, want my-instance (never the caller's)", tr.Instance)
	}
}

func TestFromRequestGeneratesCallID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/sensors", nil)

	tr := FromRequest(r, "my-instance")

	if tr.Call == "" {
		t.Error("Call = empty, want a generated ID")
	}

	other := FromRequest(r, "my-instance")
	if other.Call == tr.Call {
		t.Error("two generated call IDs are equal, want unique")
	}
}

func TestContextRoundTrip(t *testing.T) {
	want := Trace{Instance: "inst", Call: "call"}

	ctx := NewContext(context.Background(), want)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("FromContext() ok = false, want true")
	}
	if got != want {
		t.Errorf("FromContext() = %+v, want %+v", got, want)
	}

	if _, ok := FromContext(context.Background()); ok {
		t.Error("FromContext() on empty context: ok = true, want false")
	}
}

func TestSetHeaders(t *testing.T) {
	h := make(http.Header)
	Trace{Instance: "inst", Call: "call"}.SetHeaders(h)

	if h.Get(HeaderInstance) != "inst" {
		t.Errorf("%s = %q, want inst", HeaderInstance, h.Get(HeaderInstance))
	}
	if h.Get(HeaderCall) != "call" {
		t.Errorf("%s = %q, want call", HeaderCall, h.Get(HeaderCall))
	}

	empty := make(http.Header)
	Trace{}.SetHeaders(empty)
	if len(empty) != 0 {
		t.Errorf("zero Trace set headers %v, want none", empty)
	}
}
