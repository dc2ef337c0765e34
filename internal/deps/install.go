package deps

import (
	"runtime"
	"slices"
	"strings"
)

// InstallMethod names the package manager used in install hints.
type InstallMethod string

const (
	InstallApt    InstallMethod = "apt"
	InstallDnf    InstallMethod = "dnf"
	InstallPacman InstallMethod = "pacman"
	InstallBrew   InstallMethod = "brew"
	InstallWinget InstallMethod = "winget"
	InstallPip    InstallMethod = "pip"
	InstallManual InstallMethod = "manual"
)

// DetectInstallMethod picks the package manager for the host.
func (c *Checker) DetectInstallMethod() InstallMethod {
	return detectInstallMethod(runtime.GOOS, c.lookPath)
}

func detectInstallMethod(goos string, lookPath func(string) (string, error)) InstallMethod {
	has := func(name string) bool {
		_, err := lookPath(name)
		return err == nil
	}
	switch goos {
	case "darwin":
		if has("brew") {
			return InstallBrew
		}
		return InstallManual
	case "windows":
		if has("winget") {
			return InstallWinget
		}
		return InstallPip
	default:
		switch {
		case has("apt-get"), has("apt"):
			return InstallApt
		case has("dnf"):
			return InstallDnf
		case has("pacman"):
			return InstallPacman
		default:
			return InstallPip
		}
	}
}

// InstallHint renders the shell command that installs packages with method.
// Duplicate package names collapse (ffmpeg ships ffprobe).
func InstallHint(method InstallMethod, packages []string) string {
	pkgs := make([]string, 0, len(packages))
	for _, p := range packages {
		if p = strings.TrimSpace(p); p != "" && !slices.Contains(pkgs, p) {
			pkgs = append(pkgs, p)
		}
	}
	if len(pkgs) == 0 {
		return ""
	}
	list := strings.Join(pkgs, " ")
	switch method {
	case InstallApt:
		return "sudo apt install " + list
	case InstallDnf:
		return "sudo dnf install " + list
	case InstallPacman:
		return "sudo pacman -S " + list
	case InstallBrew:
		return "brew install " + list
	case InstallWinget:
		return "winget install " + list
	case InstallPip:
		hint := ""
		if slices.Contains(pkgs, "yt-dlp") {
			hint = "python3 -m pip install --upgrade yt-dlp"
		}
		if slices.Contains(pkgs, "ffmpeg") {
			if hint != "" {
				hint += "; "
			}
			hint += "ffmpeg from https://ffmpeg.org/download.html"
		}
		return hint
	default:
		return "install " + list + " with your package manager"
	}
}
