package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"lyricsync/internal/config"
)

// Requirement defines an external dependency lyricsync relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// Requirements builds the dependency list for the active configuration. The
// whisper CLI only matters when it is the selected engine.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{Name: "FFmpeg", Command: cfg.Tools.FFmpegBinary, Description: "Audio extraction and caption burning"},
		{Name: "FFprobe", Command: cfg.Tools.FFprobeBinary, Description: "Source resolution probing"},
	}
	if cfg.Transcription.Engine == "whisper" {
		reqs = append(reqs, Requirement{
			Name:        "Whisper",
			Command:     cfg.Transcription.WhisperBinary,
			Description: "Local transcription engine",
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
