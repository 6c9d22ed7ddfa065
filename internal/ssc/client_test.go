package ssc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, New(srv.URL, "secret")
}

func TestListServers(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/v1/servers/" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"servers": []map[string]any{
				{"name": "A", "status": "free", "address": "1.2.3.4", "booking": nil},
				{"name": "B", "status": "busy", "address": "5.6.7.8", "booking": map[string]any{"user": "bob"}},
			},
		})
	})

	list, err := c.ListServers(context.Background())
	if err != nil {
		t.Fatalf("ListServers() error: %v", err)
	}
	if len(list.Servers) != 2 {
		t.Fatalf("got %d servers, want 2", len(list.Servers))
	}
	if list.Servers[0].Booking != nil {
		t.Errorf("server A booking = %+v, want nil", list.Servers[0].Booking)
	}
	if b := list.Servers[1].Booking; b == nil || b.User != "bob" {
		t.Errorf("server B booking = %+v, want user bob", b)
	}
}

func TestCreateBookingQuery(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/bookings/" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("user") != "ab#1" || q.Get("hours") != "3" || q.Get("key") != "secret" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`{"user":"ab#1","server":{"name":"Server 1","connect-string":"connect 1.2.3.4:27015; password \"pw\""}}`)) //nolint:errcheck
	})

	b, err := c.CreateBooking(context.Background(), "a/b#1", 3)
	if err != nil {
		t.Fatalf("CreateBooking() error: %v", err)
	}
	if b.Server == nil || b.Server.Name != "Server 1" {
		t.Fatalf("server = %+v", b.Server)
	}
	if !strings.HasPrefix(b.Server.ConnectString, "connect 1.2.3.4:27015") {
		t.Errorf("ConnectString = %q", b.Server.ConnectString)
	}
}

func TestCreateBookingErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		conflict      bool
		noServer      bool
		statusMessage string
	}{
		{name: "already booked", status: http.StatusConflict, body: `{"statusMessage":"Booking exists"}`, conflict: true, statusMessage: "Booking exists"},
		{name: "no capacity", status: http.StatusInternalServerError, body: `{"statusMessage":"No server available"}`, noServer: true, statusMessage: NoServerAvailable},
		{name: "other 500", status: http.StatusInternalServerError, body: `{"statusMessage":"boom"}`, statusMessage: "boom"},
		{name: "500 not json", status: http.StatusInternalServerError, body: `<html>oops</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body)) //nolint:errcheck
			})

			_, err := c.CreateBooking(context.Background(), "bob#1234", 3)
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsStatus(err, tt.status) {
				t.Errorf("IsStatus(%d) = false for %v", tt.status, err)
			}
			if IsConflict(err) != tt.conflict {
				t.Errorf("IsConflict = %v, want %v", IsConflict(err), tt.conflict)
			}
			if IsNoServerAvailable(err) != tt.noServer {
				t.Errorf("IsNoServerAvailable = %v, want %v", IsNoServerAvailable(err), tt.noServer)
			}
			if IsTransport(err) {
				t.Error("status error reported as transport error")
			}
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("error %T is not *StatusError", err)
			}
			if string(se.Body) != tt.body {
				t.Errorf("Body = %q, want %q", se.Body, tt.body)
			}
			if got := se.StatusMessage(); got != tt.statusMessage {
				t.Errorf("StatusMessage() = %q, want %q", got, tt.statusMessage)
			}
		})
	}
}

func TestGetBookingPath(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.EscapedPath(); got != "/api/v1/bookings/ab%231/" {
			t.Errorf("path = %q", got)
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"user":"ab#1","server":{"name":"S2","connect-string":"connect x"}}`)) //nolint:errcheck
	})

	b, err := c.GetBooking(context.Background(), "a/b#1")
	if err != nil {
		t.Fatalf("GetBooking() error: %v", err)
	}
	if b.User != "ab#1" || b.Server.Name != "S2" {
		t.Errorf("booking = %+v", b)
	}
}

func TestGetBookingNotFound(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"statusMessage":"Not Found"}`)) //nolint:errcheck
	})

	_, err := c.GetBooking(context.Background(), "bob#1234")
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound = false for %v", err)
	}
}

func TestDeleteBooking(t *testing.T) {
	var calls int
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodDelete || r.URL.EscapedPath() != "/api/v1/bookings/bob%231234/" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.EscapedPath())
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.DeleteBooking(context.Background(), "bob#1234"); err != nil {
		t.Fatalf("DeleteBooking() error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDeleteBookingRequiresNoContent(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`)) //nolint:errcheck
	})

	err := c.DeleteBooking(context.Background(), "bob#1234")
	if !IsStatus(err, http.StatusOK) {
		t.Fatalf("200 on delete should be a StatusError, got %v", err)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := New(srv.URL, "secret")
	srv.Close()

	_, err := c.ListServers(context.Background())
	if err == nil {
		t.Fatal("expected error from closed server")
	}
	if !IsTransport(err) {
		t.Errorf("IsTransport = false for %v", err)
	}
	var se *StatusError
	if errors.As(err, &se) {
		t.Errorf("transport failure must not be a StatusError: %v", err)
	}
}

func TestTimeoutIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewFromConf(Conf{Endpoint: srv.URL, Key: "secret", Timeout: 50 * time.Millisecond})
	_, err := c.GetBooking(context.Background(), "bob")
	if !IsTransport(err) {
		t.Fatalf("timeout should be a TransportError, got %v", err)
	}
}

func TestDecodeError(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`)) //nolint:errcheck
	})

	_, err := c.ListServers(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("error = %v, want decode error", err)
	}
	if IsTransport(err) || IsStatus(err, http.StatusOK) {
		t.Errorf("decode error misclassified: %v", err)
	}
}

func TestOversizedBody(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"servers":[{"name":"` + strings.Repeat("x", maxBodySize) + `"}]}`)) //nolint:errcheck
	})

	_, err := c.ListServers(context.Background())
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("error = %v, want ErrBodyTooLarge", err)
	}
	if strings.Contains(err.Error(), "decode response") {
		t.Errorf("oversized body reported as decode error: %v", err)
	}
}

func TestOversizedErrorBodyKeepsStatus(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(strings.Repeat("e", maxBodySize+10))) //nolint:errcheck
	})

	_, err := c.ListServers(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
		t.Fatalf("error = %v, want StatusError 502", err)
	}
	if len(se.Body) != maxBodySize {
		t.Errorf("body len = %d, want %d", len(se.Body), maxBodySize)
	}
}

func TestPathSafe(t *testing.T) {
	tests := map[string]string{
		"bob#1234":  "bob#1234",
		"a/b/c#1":   "abc#1",
		"//":        "",
		"no/slash/": "noslash",
	}
	for in, want := range tests {
		if got := PathSafe(in); got != want {
			t.Errorf("PathSafe(%q) = %q, want %q", in, got, want)
		}
	}
}
