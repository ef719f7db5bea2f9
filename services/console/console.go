// Package console is the line-oriented serial front end. Each line is split
// shell-style and mapped onto the same DisplayRequest constructors as the
// web handlers; replies are single "ok ..." or "err ..." lines.
package console

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/google/shlex"

	"ledstack-go/errcode"
	"ledstack-go/mailbox"
	"ledstack-go/platform"
	"ledstack-go/types"
	"ledstack-go/x/logx"
	"ledstack-go/x/strconvx"
)

var log = logx.Tag("console")

const maxLine = 256

// Clock reports the sign's time and supply for "status".
type Clock interface {
	CurrentTime() types.TimeOfDay
	PowerStatus() types.PowerState
}

// Settings is the persisted-settings surface the console can reset.
type Settings interface {
	Clear() error
}

// Hooks are optional actions outside the display path.
type Hooks struct {
	// SetHeartbeat changes the heartbeat interval live.
	SetHeartbeat func(time.Duration) error
}

type Console struct {
	out      *mailbox.Producer[types.DisplayRequest]
	clock    Clock
	settings Settings
	hooks    Hooks
}

func New(out *mailbox.Producer[types.DisplayRequest], clock Clock, settings Settings, hooks Hooks) *Console {
	return &Console{out: out, clock: clock, settings: settings, hooks: hooks}
}

const usage = "commands: header <text> | header-color <hex> | time-color <hex> | bg <hex> | " +
	"brightness <0..255> | power on|off | time <h> <m> <s> | status | clear-settings | heartbeat <dur>"

// Exec runs one command line and returns the reply.
func (c *Console) Exec(ctx context.Context, line string) string {
	args, err := shlex.Split(line)
	if err != nil {
		return "err " + string(errcode.InvalidParams) + " " + err.Error()
	}
	if len(args) == 0 {
		return ""
	}
	reply, err := c.dispatch(ctx, args[0], args[1:])
	if err != nil {
		return "err " + string(errcode.Of(err)) + " " + err.Error()
	}
	return "ok " + reply
}

func (c *Console) dispatch(ctx context.Context, cmd string, args []string) (string, error) {
	need := func(n int) error {
		if len(args) != n {
			return errcode.New(errcode.InvalidParams, cmd, "want "+strconvx.Itoa(n)+" argument(s)")
		}
		return nil
	}
	switch cmd {
	case "help":
		return usage, nil
	case "status":
		return c.clock.CurrentTime().String() + " " + c.clock.PowerStatus().String(), nil
	case "clear-settings":
		if c.settings == nil {
			return "", errcode.New(errcode.StoreUnavailable, cmd, "no store")
		}
		if err := c.settings.Clear(); err != nil {
			return "", err
		}
		return "settings cleared", nil
	case "heartbeat":
		if err := need(1); err != nil {
			return "", err
		}
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return "", errcode.Wrap(errcode.InvalidParams, cmd, err)
		}
		if c.hooks.SetHeartbeat == nil {
			return "", errcode.New(errcode.NotFound, cmd, "heartbeat not running")
		}
		if err := c.hooks.SetHeartbeat(d); err != nil {
			return "", err
		}
		return "heartbeat " + d.String(), nil
	}

	var (
		req types.DisplayRequest
		err error
	)
	switch cmd {
	case "header":
		if len(args) == 0 {
			return "", need(1)
		}
		req, err = types.HeaderText(strings.Join(args, " "))
	case "header-color", "time-color", "bg":
		if err := need(1); err != nil {
			return "", err
		}
		var v uint32
		if v, err = types.ParseColor(args[0]); err == nil {
			switch cmd {
			case "header-color":
				req = types.HeaderColor(v)
			case "time-color":
				req = types.TimeColor(v)
			default:
				req = types.BackgroundColor(v)
			}
		}
	case "brightness":
		if err := need(1); err != nil {
			return "", err
		}
		var b uint8
		if b, err = types.ParseBrightness(args[0]); err == nil {
			req = types.Brightness(b)
		}
	case "power":
		if err := need(1); err != nil {
			return "", err
		}
		var b uint8
		if b, err = types.ParsePower(args[0]); err == nil {
			req = types.Brightness(b)
		}
	case "time":
		if err := need(3); err != nil {
			return "", err
		}
		var t types.TimeOfDay
		if t, err = types.ParseTime(args[0], args[1], args[2]); err == nil {
			req = types.SetClock(t)
		}
	default:
		return "", errcode.New(errcode.NotFound, cmd, "unknown command; try help")
	}
	if err != nil {
		return "", err
	}
	if err := c.out.Send(ctx, req); err != nil {
		return "", err
	}
	return req.String(), nil
}

// Run reads lines from port until ctx is done or the port fails.
func (c *Console) Run(ctx context.Context, port platform.SerialPort) error {
	buf := make([]byte, 64)
	line := make([]byte, 0, maxLine)
	overflow := false
	for {
		n, err := port.RecvSomeContext(ctx, buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Println("read failed:", err.Error())
			return err
		}
		for _, b := range buf[:n] {
			switch {
			case b == '\n' || b == '\r':
				if overflow {
					c.reply(port, "err "+string(errcode.InvalidParams)+" line too long")
				} else if s := string(bytes.TrimSpace(line)); s != "" {
					c.reply(port, c.Exec(ctx, s))
				}
				line, overflow = line[:0], false
			case len(line) >= maxLine:
				overflow = true
			default:
				line = append(line, b)
			}
		}
	}
}

func (c *Console) reply(port platform.SerialPort, s string) {
	if s == "" {
		return
	}
	_, _ = port.Write([]byte(s + "\r\n"))
}
