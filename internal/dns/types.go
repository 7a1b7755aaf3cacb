// =============================================================================
// internal/dns/types.go - DNS verification data structures
// =============================================================================
package dns

import "time"

// RecordType represents the static DNS entry types that can be verified
type RecordType string

const (
	RecordTypeA     RecordType = "A"
	RecordTypeCNAME RecordType = "CNAME"
)

// Answer represents a single answer record returned by the resolver
type Answer struct {
	Name  string     `json:"name"`
	Type  RecordType `json:"type"`
	Value string     `json:"value"`
	TTL   uint32     `json:"ttl"`
}

// Status is the outcome of verifying one static entry
type Status string

const (
	StatusOK       Status = "ok"
	StatusMismatch Status = "mismatch"
	StatusMissing  Status = "missing"
	StatusError    Status = "error"
	StatusSkipped  Status = "skipped"
)

// Check represents the verification result for one static entry
type Check struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         RecordType    `json:"type"`
	Expected     string        `json:"expected"`
	Actual       []string      `json:"actual,omitempty"`
	Status       Status        `json:"status"`
	Message      string        `json:"message,omitempty"`
	ResponseTime time.Duration `json:"response_time"`
}

// Summary counts checks by status
type Summary struct {
	Total    int `json:"total"`
	OK       int `json:"ok"`
	Mismatch int `json:"mismatch"`
	Missing  int `json:"missing"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

// Summarize counts checks by status
func Summarize(checks []Check) Summary {
	s := Summary{Total: len(checks)}
	for _, c := range checks {
		switch c.Status {
		case StatusOK:
			s.OK++
		case StatusMismatch:
			s.Mismatch++
		case StatusMissing:
			s.Missing++
		case StatusError:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// Healthy reports whether every queryable entry resolved as configured
func (s Summary) Healthy() bool {
	return s.Mismatch == 0 && s.Missing == 0 && s.Failed == 0
}

// QueryOptions represents options for DNS queries
type QueryOptions struct {
	Timeout time.Duration `json:"timeout"`
	Retries int           `json:"retries"`
}
