package intake

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Archive persists intake records and submissions as JSON files on local
// disk. Saves are best effort from the caller's point of view: a failed write
// never blocks the conversation.
type Archive struct {
	dir string
}

// NewArchive returns an archive rooted at dir, creating it if needed.
func NewArchive(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Archive{dir: dir}, nil
}

// Dir returns the archive's root directory.
func (a *Archive) Dir() string { return a.dir }

// SaveRecord writes the in-progress record for a session. Repeated saves for
// the same session and name overwrite the previous file.
func (a *Archive) SaveRecord(sessionID string, t InsuranceType, name string, rec Record) error {
	file := fmt.Sprintf("%s_insurance_%s_%s.json", t, sessionID, sanitizeName(name))
	return a.write(file, rec)
}

// SaveSubmission writes the final submitted quote request, stamped with the
// submission time.
func (a *Archive) SaveSubmission(t InsuranceType, submittedAt time.Time, payload any) error {
	file := fmt.Sprintf("SUBMITTED_%s_quote_%s.json", t, submittedAt.Format("20060102_150405"))
	return a.write(file, payload)
}

func (a *Archive) write(file string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", file, err)
	}
	path := filepath.Join(a.dir, file)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	return nil
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		name = "unknown"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	return b.String()
}
