// package idle answers one question: how long since the user last touched
// an input device. The update loop uses it for AFK detection and treats
// every failure as "not idle".
package idle

import (
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Provider reports the time since the last user input.
type Provider interface {
	IdleTime() (time.Duration, error)
}

var getRuntime = func() string { return runtime.GOOS }

// SystemProvider queries the operating system through external tools:
// xprintidle on Linux (X11), the IOKit HIDIdleTime counter on macOS.
type SystemProvider struct {
	run func(name string, args ...string) ([]byte, error)
}

func NewSystemProvider() *SystemProvider {
	return &SystemProvider{
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).Output()
		},
	}
}

func (p *SystemProvider) IdleTime() (time.Duration, error) {
	switch rt := getRuntime(); rt {
	case "linux":
		out, err := p.run("xprintidle")
		if err != nil {
			return 0, fmt.Errorf("xprintidle: %w", err)
		}
		ms, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("unexpected xprintidle output: %w", err)
		}
		return time.Duration(ms) * time.Millisecond, nil
	case "darwin":
		out, err := p.run("sh", "-c", `ioreg -c IOHIDSystem | awk '/HIDIdleTime/ {print $NF; exit}'`)
		if err != nil {
			return 0, fmt.Errorf("ioreg: %w", err)
		}
		ns, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("unexpected ioreg output: %w", err)
		}
		return time.Duration(ns) * time.Nanosecond, nil
	default:
		return 0, fmt.Errorf("idle detection unsupported on %s", rt)
	}
}
