package models

import (
	"encoding/json"
	"math/rand"
	"time"
)

// EligibleVoter is one entry of the pre-seeded eligibility list. A claim is
// only valid when both the voter ID and the issued ballot number match.
type EligibleVoter struct {
	ID           string `json:"id"`
	BallotNumber string `json:"num"`
}

// Submitter is the request metadata recorded with a vote receipt.
type Submitter struct {
	Address string `json:"address"`
	Client  string `json:"client"`
}

// VoteRecord is the identity-linked receipt proving a voter has voted in a
// given window. It never carries ballot content.
type VoteRecord struct {
	ID           string    `json:"id"`
	BallotNumber string    `json:"num"`
	Submitter    Submitter `json:"user"`
	TimeUTC      time.Time `json:"time-UTC"`
}

// Ballot is the anonymized vote content, stored apart from any identity.
type Ballot struct {
	Magistrates []string `json:"magistrate"`
	Senators    []string `json:"senator"`
}

// EligibilityLedger is the durable eligibility document: the all-time list
// of eligible voters plus, per voting window, the receipts cast in it.
type EligibilityLedger struct {
	Valid   []EligibleVoter
	Windows map[string][]VoteRecord
}

func NewEligibilityLedger() *EligibilityLedger {
	return &EligibilityLedger{Windows: make(map[string][]VoteRecord)}
}

// IsEligible reports whether the exact id+ballot-number pair is on the
// all-time eligibility list.
func (l *EligibilityLedger) IsEligible(v EligibleVoter) bool {
	for _, e := range l.Valid {
		if e.ID == v.ID && e.BallotNumber == v.BallotNumber {
			return true
		}
	}
	return false
}

// HasVoted reports whether a receipt with this voter ID already exists for
// the window.
func (l *EligibilityLedger) HasVoted(windowKey, voterID string) bool {
	for _, rec := range l.Windows[windowKey] {
		if rec.ID == voterID {
			return true
		}
	}
	return false
}

// AppendRecord adds a receipt to the window's list.
func (l *EligibilityLedger) AppendRecord(windowKey string, rec VoteRecord) {
	if l.Windows == nil {
		l.Windows = make(map[string][]VoteRecord)
	}
	l.Windows[windowKey] = append(l.Windows[windowKey], rec)
}

// Records returns the receipts for a window.
func (l *EligibilityLedger) Records(windowKey string) []VoteRecord {
	return l.Windows[windowKey]
}

// Clone deep-copies the ledger so in-memory stores hand out private state.
func (l *EligibilityLedger) Clone() *EligibilityLedger {
	c := &EligibilityLedger{
		Valid:   append([]EligibleVoter(nil), l.Valid...),
		Windows: make(map[string][]VoteRecord, len(l.Windows)),
	}
	for k, recs := range l.Windows {
		c.Windows[k] = append([]VoteRecord(nil), recs...)
	}
	return c
}

// The ledger document keeps the eligibility list under a top-level "valid"
// key and each window's receipts under the window's canonical key.
func (l *EligibilityLedger) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(l.Windows)+1)
	valid := l.Valid
	if valid == nil {
		valid = []EligibleVoter{}
	}
	doc["valid"] = valid
	for k, recs := range l.Windows {
		doc[k] = recs
	}
	return json.Marshal(doc)
}

func (l *EligibilityLedger) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	l.Valid = nil
	l.Windows = make(map[string][]VoteRecord)
	for k, raw := range doc {
		if k == "valid" {
			if err := json.Unmarshal(raw, &l.Valid); err != nil {
				return err
			}
			continue
		}
		var recs []VoteRecord
		if err := json.Unmarshal(raw, &recs); err != nil {
			return err
		}
		l.Windows[k] = recs
	}
	return nil
}

// BallotLedger is the durable ballot document: per window, the anonymized
// ballots in storage order.
type BallotLedger struct {
	Windows map[string][]Ballot
}

func NewBallotLedger() *BallotLedger {
	return &BallotLedger{Windows: make(map[string][]Ballot)}
}

// Append adds a ballot to the window's list.
func (l *BallotLedger) Append(windowKey string, b Ballot) {
	if l.Windows == nil {
		l.Windows = make(map[string][]Ballot)
	}
	l.Windows[windowKey] = append(l.Windows[windowKey], b)
}

// Ballots returns the ballots for a window.
func (l *BallotLedger) Ballots(windowKey string) []Ballot {
	return l.Windows[windowKey]
}

// Shuffle reorders the window's ballots so storage order carries no
// correlation with the order receipts were recorded.
func (l *BallotLedger) Shuffle(windowKey string, rng *rand.Rand) {
	ballots := l.Windows[windowKey]
	rng.Shuffle(len(ballots), func(i, j int) {
		ballots[i], ballots[j] = ballots[j], ballots[i]
	})
}

// Clone deep-copies the ledger.
func (l *BallotLedger) Clone() *BallotLedger {
	c := &BallotLedger{Windows: make(map[string][]Ballot, len(l.Windows))}
	for k, ballots := range l.Windows {
		c.Windows[k] = append([]Ballot(nil), ballots...)
	}
	return c
}

func (l *BallotLedger) MarshalJSON() ([]byte, error) {
	if l.Windows == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(l.Windows)
}

func (l *BallotLedger) UnmarshalJSON(data []byte) error {
	l.Windows = make(map[string][]Ballot)
	return json.Unmarshal(data, &l.Windows)
}
