package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"ytcs/internal/services"
	"ytcs/internal/services/command"
)

// versionTimeout bounds a single "--version" probe.
const versionTimeout = 5 * time.Second

// Requirement defines an external dependency ytcs relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Package     string
	VersionArgs []string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Package     string
	Optional    bool
	Available   bool
	Path        string
	Version     string
	Detail      string
}

// Requirements lists the binaries the pipeline shells out to.
func Requirements(ytDlp, ffmpeg, ffprobe string) []Requirement {
	return []Requirement{
		{
			Name:        "yt-dlp",
			Command:     ytDlp,
			Description: "Required for metadata and audio download",
			Package:     "yt-dlp",
			VersionArgs: []string{"--version"},
		},
		{
			Name:        "FFmpeg",
			Command:     ffmpeg,
			Description: "Required for silence analysis and splitting",
			Package:     "ffmpeg",
			VersionArgs: []string{"-version"},
		},
		{
			Name:        "FFprobe",
			Command:     ffprobe,
			Description: "Required for inspecting the downloaded audio",
			Package:     "ffmpeg",
			VersionArgs: []string{"-version"},
		},
	}
}

// Option configures a Checker.
type Option func(*Checker)

// WithExecutor injects the executor used for version probes.
func WithExecutor(exec command.Executor) Option {
	return func(c *Checker) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLookPath overrides binary resolution.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(c *Checker) {
		if fn != nil {
			c.lookPath = fn
		}
	}
}

// Checker resolves binaries on PATH and probes their versions.
type Checker struct {
	exec     command.Executor
	lookPath func(string) (string, error)
}

// NewChecker builds a checker backed by os/exec.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{exec: command.New(), lookPath: exec.LookPath}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckBinaries evaluates the provided requirements and reports availability
// without probing versions.
func CheckBinaries(requirements []Requirement) []Status {
	c := NewChecker()
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, c.resolve(req))
	}
	return results
}

// Check resolves every requirement and records the first line of its version
// output for the ones that are present.
func (c *Checker) Check(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := c.resolve(req)
		if status.Available && len(req.VersionArgs) > 0 {
			status.Version = c.version(ctx, status.Path, req.VersionArgs)
		}
		results = append(results, status)
	}
	return results
}

func (c *Checker) resolve(req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		Package:     req.Package,
		Optional:    req.Optional,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := c.lookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	status.Available = true
	status.Path = path
	return status
}

func (c *Checker) version(ctx context.Context, binary string, args []string) string {
	probeCtx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	var first string
	err := c.exec.Run(probeCtx, binary, args, func(line string) {
		if first == "" {
			first = strings.TrimSpace(line)
		}
	})
	if err != nil {
		return ""
	}
	return ParseVersion(first)
}

// ParseVersion extracts the version token from a --version banner.
// "ffmpeg version 6.1.1-3ubuntu5 Copyright ..." yields "6.1.1-3ubuntu5";
// yt-dlp prints the bare version and is returned unchanged.
func ParseVersion(line string) string {
	fields := strings.Fields(line)
	for i, f := range fields {
		if f == "version" && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	if len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			out = append(out, s)
		}
	}
	return out
}

// Require returns a services.ErrDependency error naming every missing
// required binary together with an install hint, or nil.
func Require(statuses []Status, method InstallMethod) error {
	missing := Missing(statuses)
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	packages := make([]string, 0, len(missing))
	for _, s := range missing {
		names = append(names, s.Name)
		packages = append(packages, s.Package)
	}
	msg := fmt.Sprintf("missing %s; install with: %s", strings.Join(names, ", "), InstallHint(method, packages))
	return services.Wrap(services.ErrDependency, "deps", "check", msg, nil)
}
