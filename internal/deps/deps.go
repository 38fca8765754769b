package deps

import (
	"os/exec"
	"strings"
)

// Status represents the installation status of a dependency
type Status struct {
	Installed bool
	Path      string
	Version   string
}

// Tool is an external program memoscribe shells out to
type Tool struct {
	Name        string
	Purpose     string
	VersionFlag string // empty when the tool has no version flag
	Required    bool   // false: only an optional feature degrades
	Install     string
}

// Tools lists every external program, required ones first
var Tools = []Tool{
	{"pw-record", "microphone capture", "--version", true, "pipewire-tools"},
	{"pw-cli", "PipeWire availability check", "--version", true, "pipewire-tools"},
	{"ffprobe", "duration of non-WAV audio files", "-version", false, "ffmpeg"},
	{"xdg-open", "opening the lesson PDF", "--version", false, "xdg-utils"},
	{"notify-send", "desktop notifications", "--version", false, "libnotify"},
	{"wl-copy", "copying the transcript to the clipboard", "--version", false, "wl-clipboard"},
}

// Check checks if a program is installed and returns its status
func Check(name, versionFlag string) Status {
	path, err := exec.LookPath(name)
	if err != nil {
		return Status{Installed: false}
	}

	status := Status{
		Installed: true,
		Path:      path,
	}
	if versionFlag == "" {
		return status
	}

	// most tools print their version on the first line
	output, err := exec.Command(path, versionFlag).Output()
	if err == nil {
		lines := strings.Split(string(output), "\n")
		if len(lines) > 0 {
			status.Version = strings.TrimSpace(lines[0])
		}
	}

	return status
}

// Report is the result of checking one tool
type Report struct {
	Tool
	Status
}

// CheckAll checks every tool in Tools
func CheckAll() []Report {
	reports := make([]Report, 0, len(Tools))
	for _, t := range Tools {
		reports = append(reports, Report{Tool: t, Status: Check(t.Name, t.VersionFlag)})
	}
	return reports
}

// Missing returns the required tools that are not installed
func Missing(reports []Report) []Report {
	var missing []Report
	for _, r := range reports {
		if r.Required && !r.Installed {
			missing = append(missing, r)
		}
	}
	return missing
}
