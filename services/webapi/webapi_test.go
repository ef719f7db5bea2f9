package webapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"ledstack-go/errcode"
	"ledstack-go/mailbox"
	"ledstack-go/types"
)

type fakeClock struct{}

func (fakeClock) CurrentTime() types.TimeOfDay  { return types.TimeOfDay{Hour: 14, Minute: 5} }
func (fakeClock) PowerStatus() types.PowerState { return types.PowerMain }

type fakeWiFi struct{ ssid, pass string }

func (f *fakeWiFi) SaveWiFi(ssid, password string) error {
	if ssid == "" {
		return errcode.New(errcode.InvalidParams, "test", "empty")
	}
	f.ssid, f.pass = ssid, password
	return nil
}

func newTestServer(capacity int, cfg Config) (*Server, *mailbox.Box[types.DisplayRequest], *fakeWiFi) {
	box := mailbox.New[types.DisplayRequest]("display", capacity)
	wifi := &fakeWiFi{}
	s := New(box.Producer("web", mailbox.BlockTimeout(20*time.Millisecond)), fakeClock{}, wifi, cfg, box)
	return s, box, wifi
}

func post(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAcceptedRequestsAreQueued(t *testing.T) {
	s, box, _ := newTestServer(10, Config{})
	cases := []struct {
		path string
		form url.Values
		want types.DisplayRequest
	}{
		{"/api/brightness", url.Values{"brightness": {"128"}}, types.Brightness(128)},
		{"/api/power", url.Values{"power": {"off"}}, types.Brightness(0)},
		{"/api/power", url.Values{"power": {"ON"}}, types.Brightness(255)},
		{"/api/header/color", url.Values{"color": {"#00ff00"}}, types.HeaderColor(0x00FF00)},
		{"/api/time/color", url.Values{"color": {"FF0000"}}, types.TimeColor(0xFF0000)},
		{"/api/bg/color", url.Values{"color": {"000010"}}, types.BackgroundColor(0x10)},
		{"/api/time/sync", url.Values{"hour": {"23"}, "minute": {"59"}, "second": {"59"}},
			types.SetClock(types.TimeOfDay{Hour: 23, Minute: 59, Second: 59})},
	}
	for _, c := range cases {
		rec := post(t, s, c.path, c.form)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("%s: status %d body %s", c.path, rec.Code, rec.Body.String())
		}
		var res result
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil || !res.OK || res.ID == "" {
			t.Fatalf("%s: body %s", c.path, rec.Body.String())
		}
		got, ok := box.TryRecv()
		if !ok || got != c.want {
			t.Fatalf("%s: queued %v, want %v", c.path, got, c.want)
		}
	}
}

func TestHeaderText(t *testing.T) {
	s, box, _ := newTestServer(10, Config{})
	if rec := post(t, s, "/api/header/text", url.Values{"text": {"Open"}}); rec.Code != http.StatusAccepted {
		t.Fatalf("status %d", rec.Code)
	}
	got, _ := box.TryRecv()
	if txt, ok := got.Text(); !ok || txt != "Open" || got.Action() != types.SetHeaderText {
		t.Fatalf("queued %v", got)
	}
	long := strings.Repeat("x", types.MaxTextLen+1)
	if rec := post(t, s, "/api/header/text", url.Values{"text": {long}}); rec.Code != http.StatusBadRequest {
		t.Fatalf("long text status %d", rec.Code)
	}
	if box.Len() != 0 {
		t.Fatal("rejected text was queued")
	}
}

func TestMalformedRejectedNotQueued(t *testing.T) {
	s, box, _ := newTestServer(10, Config{})
	bad := []struct {
		path string
		form url.Values
	}{
		{"/api/brightness", url.Values{"brightness": {"256"}}},
		{"/api/brightness", url.Values{}},
		{"/api/brightness", url.Values{"brightness": {"-1"}}},
		{"/api/power", url.Values{"power": {"dim"}}},
		{"/api/header/color", url.Values{"color": {"12345"}}},
		{"/api/header/color", url.Values{"color": {"GGGGGG"}}},
		{"/api/time/sync", url.Values{"hour": {"24"}, "minute": {"0"}, "second": {"0"}}},
		{"/api/time/sync", url.Values{"hour": {"1"}, "minute": {"60"}, "second": {"0"}}},
		{"/api/time/sync", url.Values{"hour": {"1"}, "minute": {"0"}}},
	}
	for _, c := range bad {
		rec := post(t, s, c.path, c.form)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s %v: status %d", c.path, c.form, rec.Code)
		}
	}
	if st := box.Stats(); st.Enqueued != 0 {
		t.Fatalf("enqueued %d", st.Enqueued)
	}
}

func TestFullMailboxTimesOut(t *testing.T) {
	s, box, _ := newTestServer(1, Config{})
	if rec := post(t, s, "/api/brightness", url.Values{"brightness": {"1"}}); rec.Code != http.StatusAccepted {
		t.Fatalf("first status %d", rec.Code)
	}
	rec := post(t, s, "/api/brightness", url.Values{"brightness": {"2"}})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), string(errcode.Timeout)) {
		t.Fatalf("body %s", rec.Body.String())
	}
	if st := box.Stats(); st.TimedOut != 1 || st.Depth != 1 {
		t.Fatalf("stats %+v", st)
	}
}

func TestBasicAuth(t *testing.T) {
	s, _, _ := newTestServer(10, Config{User: "admin", Password: "pw"})
	rec := post(t, s, "/api/brightness", url.Values{"brightness": {"1"}})
	if rec.Code != http.StatusUnauthorized || rec.Header().Get("WWW-Authenticate") == "" {
		t.Fatalf("no creds: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.SetBasicAuth("admin", "wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad creds: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.SetBasicAuth("admin", "pw")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("good creds: %d", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	s, _, _ := newTestServer(10, Config{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	var st Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Time != "14:05:00" || st.Power != "MAIN" || len(st.Mailboxes) != 1 || st.Mailboxes[0].Capacity != 10 {
		t.Fatalf("status %+v", st)
	}
}

func TestPagesAndRedirect(t *testing.T) {
	s, _, _ := newTestServer(10, Config{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/control" {
		t.Fatalf("root: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	for _, p := range []string{"/control", "/admin"} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<form") {
			t.Fatalf("%s: %d", p, rec.Code)
		}
	}
}

func TestWiFi(t *testing.T) {
	s, box, wifi := newTestServer(10, Config{})
	if rec := post(t, s, "/api/wifi", url.Values{"ssid": {"shop"}, "password": {"secret123"}}); rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if wifi.ssid != "shop" || wifi.pass != "secret123" {
		t.Fatalf("saved %+v", wifi)
	}
	if rec := post(t, s, "/api/wifi", url.Values{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty ssid status %d", rec.Code)
	}
	if box.Len() != 0 {
		t.Fatal("wifi went through the display mailbox")
	}
}

func TestListenAndServeStops(t *testing.T) {
	s, _, _ := newTestServer(10, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[errcode.Code]int{
		errcode.InvalidParams:    400,
		errcode.Timeout:          503,
		errcode.QueueFull:        503,
		errcode.Unauthorized:     401,
		errcode.WriteFailed:      500,
		errcode.StoreUnavailable: 503,
	}
	for c, want := range cases {
		if got := StatusFor(c); got != want {
			t.Errorf("%s: %d, want %d", c, got, want)
		}
	}
}

func TestMissingFieldsRejected(t *testing.T) {
	s, box, wifi := newTestServer(10, Config{})
	if rec := post(t, s, "/api/header/text", url.Values{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("header without text: status %d", rec.Code)
	}
	if _, ok := box.TryRecv(); ok {
		t.Fatal("header without text was queued")
	}
	if rec := post(t, s, "/api/wifi", url.Values{"ssid": {"shop"}}); rec.Code != http.StatusBadRequest {
		t.Fatalf("wifi without password: status %d", rec.Code)
	}
	if wifi.ssid != "" {
		t.Fatalf("saved %+v", wifi)
	}

	// A present but empty header clears it.
	if rec := post(t, s, "/api/header/text", url.Values{"text": {""}}); rec.Code != http.StatusAccepted {
		t.Fatalf("empty header: status %d", rec.Code)
	}
	if r, ok := box.TryRecv(); !ok || r.Action() != types.SetHeaderText {
		t.Fatalf("queued %v", r)
	}
}
