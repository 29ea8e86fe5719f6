package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration for the portal.
type Server struct {
	Addr string

	// DataDir holds the election ledgers (eligibility.json, ballots.json).
	DataDir string

	// OutputFile is the submissions ledger. Empty means submissions are
	// kept in memory and logged, matching a dev run without an output flag.
	OutputFile string

	// CandidatesFile lists the magistrate/senator candidates served on the
	// voting page. Choice validation stays with the page, not the workflow.
	CandidatesFile string

	// TranslationsFile holds the localized certificate templates.
	TranslationsFile string

	// VotingStart is the fixed start of the voting window until a real
	// recurrence rule is decided.
	VotingStart time.Time

	// DebugBypass forces the voting window open. Never set in production.
	DebugBypass bool

	DefaultLang string

	JWTSigningKey string
	// AdminSecretHash is a bcrypt hash of the clerk secret. Empty disables
	// the admin surface entirely.
	AdminSecretHash string

	RedisURL string
	// AuditDatabaseURL is the PostgreSQL DSN for the audit trail. Empty
	// keeps the trail in memory.
	AuditDatabaseURL string
	// SubmissionsPerMinute rate-limits public form posts per client IP.
	// Zero disables limiting.
	SubmissionsPerMinute int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:                 getenv("CURIA_ADDR", ":5003"),
		DataDir:              getenv("CURIA_DATA_DIR", "voting"),
		OutputFile:           os.Getenv("CURIA_OUTPUT_FILE"),
		CandidatesFile:       getenv("CURIA_CANDIDATES_FILE", "elections/candidates.json"),
		TranslationsFile:     getenv("CURIA_TRANSLATIONS_FILE", "lang/documents.json"),
		DebugBypass:          os.Getenv("CURIA_DEBUG") == "true",
		DefaultLang:          getenv("CURIA_DEFAULT_LANG", "en"),
		JWTSigningKey:        getenv("CURIA_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AdminSecretHash:      os.Getenv("CURIA_ADMIN_SECRET_HASH"),
		RedisURL:             os.Getenv("CURIA_REDIS_URL"),
		AuditDatabaseURL:     os.Getenv("CURIA_AUDIT_DB_URL"),
		SubmissionsPerMinute: getenvInt("CURIA_SUBMISSIONS_PER_MINUTE", 0),
	}

	cfg.VotingStart = time.Date(2026, time.July, 30, 0, 0, 0, 0, time.UTC)
	if raw := os.Getenv("CURIA_VOTING_START"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			cfg.VotingStart = t.UTC()
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
