// Package render turns HTML entry points into DOM snapshots by driving an
// external headless browser.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"csscull/dom"
)

// DefaultBenignDiagnostics lists stderr output known to be harmless noise
// of headless environments: graphics-driver probing complaints and the
// font-rendering performance note some builds print on first run. Any
// other diagnostic output fails the render.
var DefaultBenignDiagnostics = []string{
	"libGL error",
	"MESA-LOADER",
	"GLX: Failed to create",
	"Fontconfig warning",
	"Font rendering may be slow",
}

// Renderer executes a configurable browser command once per entry point.
// Renders are independent: each gets a fresh profile directory and its own
// timeout, and there are no retries.
type Renderer struct {
	command string
	args    []string
	timeout time.Duration
	benign  []string
	log     *zap.Logger
}

// New creates a Renderer. args may reference {input} (the entry point) and
// {profile} (a per-render scratch profile directory). An empty benign list
// selects DefaultBenignDiagnostics.
func New(command string, args []string, timeout time.Duration, benign []string, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	if len(benign) == 0 {
		benign = DefaultBenignDiagnostics
	}
	return &Renderer{
		command: command,
		args:    args,
		timeout: timeout,
		benign:  benign,
		log:     log.Named("renderer"),
	}
}

// Render runs the browser on a single entry point (local path or URL) and
// returns the settled DOM as a snapshot. A timeout, a non-zero exit, or any
// non-benign diagnostic output is a fatal failure for this entry point; no
// partial snapshot is produced.
func (r *Renderer) Render(ctx context.Context, entry string) (*dom.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	profile := filepath.Join(os.TempDir(), "csscull-"+uuid.NewString())
	if err := os.MkdirAll(profile, 0700); err != nil {
		return nil, fmt.Errorf("unable to create render profile dir: %w", err)
	}
	defer os.RemoveAll(profile)

	args := make([]string, 0, len(r.args))
	for _, a := range r.args {
		a = strings.ReplaceAll(a, "{input}", entry)
		a = strings.ReplaceAll(a, "{profile}", profile)
		args = append(args, a)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Debug("Rendering entry point", zap.String("entry", entry), zap.String("command", r.command), zap.Duration("timeout", r.timeout))

	start := time.Now()
	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("render of %s timed out after %s", entry, r.timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("render of %s failed: %w (%s)", entry, err, strings.TrimSpace(stderr.String()))
	}

	if diag := r.filterDiagnostics(stderr.String()); diag != "" {
		return nil, fmt.Errorf("render of %s produced diagnostics: %s", entry, diag)
	}

	// Browser output may not be UTF-8, honor declared/sniffed encoding.
	body, err := charset.NewReader(&stdout, "text/html")
	if err != nil {
		return nil, fmt.Errorf("unable to decode render output for %s: %w", entry, err)
	}
	doc, err := dom.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("render of %s produced unparsable markup: %w", entry, err)
	}

	r.log.Debug("Rendered entry point", zap.String("entry", entry), zap.Duration("elapsed", time.Since(start)))
	return doc, nil
}

// filterDiagnostics drops known-benign stderr lines and returns what remains.
func (r *Renderer) filterDiagnostics(output string) string {
	var kept []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		benign := false
		for _, b := range r.benign {
			if strings.Contains(line, b) {
				benign = true
				break
			}
		}
		if !benign {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "; ")
}
