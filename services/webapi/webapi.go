// Package webapi is the HTTP front end of the sign. Handlers validate their
// query or form fields, build a DisplayRequest and enqueue it with a bounded
// wait; nothing malformed reaches the display mailbox.
package webapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ledstack-go/errcode"
	"ledstack-go/mailbox"
	"ledstack-go/types"
	"ledstack-go/x/logx"
	"ledstack-go/x/timex"
)

var log = logx.Tag("web")

// Clock reports the sign's time and supply.
type Clock interface {
	CurrentTime() types.TimeOfDay
	PowerStatus() types.PowerState
}

// WiFiStore persists access point credentials.
type WiFiStore interface {
	SaveWiFi(ssid, password string) error
}

// Box is a mailbox whose counters appear in /api/status.
type Box interface {
	Name() string
	Stats() mailbox.Stats
}

type Config struct {
	User     string
	Password string
}

type Server struct {
	out     *mailbox.Producer[types.DisplayRequest]
	clock   Clock
	wifi    WiFiStore
	boxes   []Box
	cfg     Config
	started int64
	mux     *http.ServeMux
}

func New(out *mailbox.Producer[types.DisplayRequest], clock Clock, wifi WiFiStore, cfg Config, boxes ...Box) *Server {
	s := &Server{out: out, clock: clock, wifi: wifi, boxes: boxes, cfg: cfg, started: timex.NowMs(), mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/control", http.StatusFound)
	})
	s.mux.HandleFunc("GET /control", page(controlPage))
	s.mux.HandleFunc("GET /admin", page(adminPage))
	s.mux.HandleFunc("GET /api/status", s.handleStatus)

	s.mux.HandleFunc("POST /api/header/text", s.enqueue(func(r *http.Request) (types.DisplayRequest, error) {
		text, err := required(r, "text")
		if err != nil {
			return types.DisplayRequest{}, err
		}
		return types.HeaderText(text)
	}))
	s.mux.HandleFunc("POST /api/header/color", s.enqueue(colorField(types.HeaderColor)))
	s.mux.HandleFunc("POST /api/time/color", s.enqueue(colorField(types.TimeColor)))
	s.mux.HandleFunc("POST /api/bg/color", s.enqueue(colorField(types.BackgroundColor)))
	s.mux.HandleFunc("POST /api/brightness", s.enqueue(func(r *http.Request) (types.DisplayRequest, error) {
		n, err := types.ParseBrightness(r.FormValue("brightness"))
		if err != nil {
			return types.DisplayRequest{}, err
		}
		return types.Brightness(n), nil
	}))
	s.mux.HandleFunc("POST /api/power", s.enqueue(func(r *http.Request) (types.DisplayRequest, error) {
		n, err := types.ParsePower(r.FormValue("power"))
		if err != nil {
			return types.DisplayRequest{}, err
		}
		return types.Brightness(n), nil
	}))
	s.mux.HandleFunc("POST /api/time/sync", s.enqueue(func(r *http.Request) (types.DisplayRequest, error) {
		t, err := types.ParseTime(r.FormValue("hour"), r.FormValue("minute"), r.FormValue("second"))
		if err != nil {
			return types.DisplayRequest{}, err
		}
		return types.SetClock(t), nil
	}))
	s.mux.HandleFunc("POST /api/wifi", s.handleWiFi)
}

// ServeHTTP applies basic auth, then routes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.cfg.User != "" {
		u, p, ok := r.BasicAuth()
		if !ok || !equal(u, s.cfg.User) || !equal(p, s.cfg.Password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="ledStack"`)
			writeError(w, "", errcode.New(errcode.Unauthorized, "web.auth", "credentials required"))
			return
		}
	}
	s.mux.ServeHTTP(w, r)
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) enqueue(build func(*http.Request) (types.DisplayRequest, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := build(r)
		if err != nil {
			writeError(w, "", err)
			return
		}
		id := uuid.New().String()
		if err := s.out.Send(r.Context(), req); err != nil {
			log.Println(id, "rejected", req.Action().String(), err.Error())
			writeError(w, id, err)
			return
		}
		log.Println(id, "queued", req.String())
		writeJSON(w, http.StatusAccepted, result{OK: true, ID: id, Action: req.Action().String()})
	}
}

func (s *Server) handleWiFi(w http.ResponseWriter, r *http.Request) {
	if s.wifi == nil {
		writeError(w, "", errcode.New(errcode.StoreUnavailable, "web.wifi", "no store"))
		return
	}
	ssid, err := required(r, "ssid")
	if err == nil {
		var pass string
		if pass, err = required(r, "password"); err == nil {
			err = s.wifi.SaveWiFi(ssid, pass)
		}
	}
	id := uuid.New().String()
	if err != nil {
		writeError(w, id, err)
		return
	}
	log.Println(id, "saved wifi credentials")
	writeJSON(w, http.StatusOK, result{OK: true, ID: id, Action: "SaveWiFi"})
}

type boxStatus struct {
	Name      string `json:"name"`
	Depth     int    `json:"depth"`
	Capacity  int    `json:"capacity"`
	HighWater int    `json:"high_water"`
	Enqueued  uint32 `json:"enqueued"`
	Dropped   uint32 `json:"dropped"`
	TimedOut  uint32 `json:"timed_out"`
}

// Status is the /api/status body.
type Status struct {
	Time          string      `json:"time"`
	Power         string      `json:"power"`
	UptimeSeconds uint32      `json:"uptime_seconds"`
	Mailboxes     []boxStatus `json:"mailboxes"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := Status{
		Time:          s.clock.CurrentTime().String(),
		Power:         s.clock.PowerStatus().String(),
		UptimeSeconds: timex.SinceMs(s.started),
	}
	for _, b := range s.boxes {
		bs := b.Stats()
		st.Mailboxes = append(st.Mailboxes, boxStatus{
			Name: b.Name(), Depth: bs.Depth, Capacity: bs.Capacity, HighWater: bs.HighWater,
			Enqueued: bs.Enqueued, Dropped: bs.Dropped, TimedOut: bs.TimedOut,
		})
	}
	writeJSON(w, http.StatusOK, st)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	log.Println("listening on", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type result struct {
	OK      bool   `json:"ok"`
	ID      string `json:"id,omitempty"`
	Action  string `json:"action,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(c errcode.Code) int {
	switch c {
	case errcode.OK:
		return http.StatusOK
	case errcode.InvalidParams, errcode.InvalidPayload:
		return http.StatusBadRequest
	case errcode.Unauthorized:
		return http.StatusUnauthorized
	case errcode.NotFound:
		return http.StatusNotFound
	case errcode.Timeout, errcode.QueueFull, errcode.Cancelled, errcode.StoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, id string, err error) {
	c := errcode.Of(err)
	writeJSON(w, StatusFor(c), result{ID: id, Error: string(c), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func page(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}
}

// required returns a query or form field that must be present, even if empty.
func required(r *http.Request, name string) (string, error) {
	if err := r.ParseForm(); err != nil {
		return "", errcode.Wrap(errcode.InvalidPayload, "web.form", err)
	}
	if !r.Form.Has(name) {
		return "", errcode.New(errcode.InvalidParams, "web.form", "missing "+name)
	}
	return r.Form.Get(name), nil
}

func colorField(mk func(uint32) types.DisplayRequest) func(*http.Request) (types.DisplayRequest, error) {
	return func(r *http.Request) (types.DisplayRequest, error) {
		c, err := types.ParseColor(r.FormValue("color"))
		if err != nil {
			return types.DisplayRequest{}, err
		}
		return mk(c), nil
	}
}
