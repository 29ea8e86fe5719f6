// Package jsonfile persists the election ledgers as two JSON documents on
// disk. Each save rewrites the whole document: the ledgers are small and the
// full-overwrite contract keeps recovery trivial (the files are the truth).
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"curia/internal/election/models"
	"curia/pkg/platform/sentinel"
)

const (
	eligibilityFile = "eligibility.json"
	ballotsFile     = "ballots.json"
)

// Store reads and writes the eligibility and ballot ledgers under a data
// directory. Writes go to a temp file first and are moved into place with an
// atomic rename so a crash never leaves a half-written ledger.
type Store struct {
	mu              sync.Mutex
	eligibilityPath string
	ballotsPath     string
}

// Open prepares the data directory. Missing ledger files are seeded with
// empty documents; this is the only case where absence is not an error.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{
		eligibilityPath: filepath.Join(dir, eligibilityFile),
		ballotsPath:     filepath.Join(dir, ballotsFile),
	}

	if err := s.seed(s.eligibilityPath, models.NewEligibilityLedger()); err != nil {
		return nil, err
	}
	if err := s.seed(s.ballotsPath, models.NewBallotLedger()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) seed(path string, empty any) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := json.MarshalIndent(empty, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal empty ledger: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}
	return nil
}

func (s *Store) LoadEligibility(_ context.Context) (*models.EligibilityLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := models.NewEligibilityLedger()
	if err := load(s.eligibilityPath, ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

func (s *Store) SaveEligibility(_ context.Context, ledger *models.EligibilityLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return save(s.eligibilityPath, ledger)
}

func (s *Store) LoadBallots(_ context.Context) (*models.BallotLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := models.NewBallotLedger()
	if err := load(s.ballotsPath, ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

func (s *Store) SaveBallots(_ context.Context, ledger *models.BallotLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return save(s.ballotsPath, ledger)
}

// SaveAll commits both ledgers as one unit. Both documents are staged to
// temp files before either rename happens, so a failure while staging leaves
// the published ledgers untouched. A failure between the two renames still
// leaves the eligibility ledger ahead of the ballot ledger; the eligibility
// side goes first on purpose, because a receipt without a ballot is a
// detectable count mismatch while the reverse would allow a double ballot.
func (s *Store) SaveAll(_ context.Context, el *models.EligibilityLedger, bl *models.BallotLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	elTmp, err := stage(s.eligibilityPath, el)
	if err != nil {
		return err
	}
	blTmp, err := stage(s.ballotsPath, bl)
	if err != nil {
		os.Remove(elTmp)
		return err
	}

	if err := os.Rename(elTmp, s.eligibilityPath); err != nil {
		os.Remove(elTmp)
		os.Remove(blTmp)
		return fmt.Errorf("publish %s: %w", s.eligibilityPath, err)
	}
	if err := os.Rename(blTmp, s.ballotsPath); err != nil {
		os.Remove(blTmp)
		return fmt.Errorf("publish %s: %w", s.ballotsPath, err)
	}
	return nil
}

func load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		// A ledger that vanished after Open is an infrastructure fact the
		// caller may want to distinguish from a parse failure.
		if os.IsNotExist(err) {
			return fmt.Errorf("read %s: %w", path, sentinel.ErrUnavailable)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func save(path string, v any) error {
	tmp, err := stage(path, v)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish %s: %w", path, err)
	}
	return nil
}

func stage(path string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", tmp, err)
	}
	return tmp, nil
}
