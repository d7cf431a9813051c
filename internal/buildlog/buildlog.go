// Package buildlog archives finished builds as JSON records plus log files.
package buildlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Record describes one finished build.
type Record struct {
	JobID      int64     `json:"job_id"`
	Branch     string    `json:"branch"`
	Requester  string    `json:"requester"`
	Success    bool      `json:"success"`
	FinishedAt time.Time `json:"finished_at"`
	LogPath    string    `json:"log"`
}

// Store writes build records to a directory and prunes old ones.
// Each build gets a <timestamp>_<job id>.json record and a matching
// .log file with the captured output.
type Store struct {
	baseDir string

	// keep bounds how many records are retained; zero or negative
	// disables pruning.
	keep int
}

// NewStore creates a store rooted at baseDir keeping the newest keep
// builds.
func NewStore(baseDir string, keep int) *Store {
	return &Store{baseDir: baseDir, keep: keep}
}

// Save writes the log file and record for a finished build, then
// prunes old builds. It returns the completed record.
func (s *Store) Save(rec Record, stdout, stderr string) (Record, error) {
	if err := os.MkdirAll(s.baseDir, 0775); err != nil {
		return rec, err
	}

	stamp := rec.FinishedAt.Format("20060102150405")
	base := fmt.Sprintf("%s_%d", stamp, rec.JobID)

	logPath := filepath.Join(s.baseDir, base+".log")
	var out strings.Builder
	out.WriteString(stdout)
	if stderr != "" {
		out.WriteString("\n- - - stderr\n")
		out.WriteString(stderr)
	}
	if err := os.WriteFile(logPath, []byte(out.String()), 0644); err != nil {
		return rec, err
	}
	rec.LogPath = logPath

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return rec, err
	}
	if err := os.WriteFile(filepath.Join(s.baseDir, base+".json"), data, 0644); err != nil {
		return rec, err
	}

	if err := s.prune(); err != nil {
		return rec, err
	}
	return rec, nil
}

// Recent returns up to n records, newest first.
func (s *Store) Recent(n int) ([]Record, error) {
	names, err := s.recordNames()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	records := make([]Record, 0, n)
	// recordNames sorts ascending; walk from the newest end.
	for i := len(names) - 1; i >= 0 && len(records) < n; i-- {
		rec, err := s.readRecord(names[i])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// prune removes the oldest builds beyond the keep limit, log files
// included.
func (s *Store) prune() error {
	if s.keep <= 0 {
		return nil
	}
	names, err := s.recordNames()
	if err != nil {
		return err
	}
	if len(names) <= s.keep {
		return nil
	}
	for _, name := range names[:len(names)-s.keep] {
		rec, err := s.readRecord(name)
		if err != nil {
			return err
		}
		if rec.LogPath != "" {
			if err := os.Remove(rec.LogPath); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
		if err := os.Remove(filepath.Join(s.baseDir, name)); err != nil {
			return err
		}
	}
	return nil
}

// recordNames lists record filenames sorted oldest first. The
// timestamp prefix makes lexical order chronological.
func (s *Store) recordNames() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) readRecord(name string) (Record, error) {
	var rec Record
	data, err := os.ReadFile(filepath.Join(s.baseDir, name))
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("corrupt build record %s: %w", name, err)
	}
	return rec, nil
}
