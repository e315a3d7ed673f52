package repo

import (
	"sort"
	"strings"
	"time"

	"github.com/lumensyntax-org/truthgit/internal/object"
)

// QueryResult is the uniform record returned by every query path: search,
// log, and the API claim listings. Callers never probe for optional
// attributes.
type QueryResult struct {
	Hash      string            `json:"hash"`
	Type      object.Type       `json:"type"`
	Content   string            `json:"content"`
	Domain    string            `json:"domain"`
	State     object.ClaimState `json:"state"`
	Consensus float64           `json:"consensus"`
	Passed    bool              `json:"passed"`
	Timestamp time.Time         `json:"timestamp"`
}

// Search scans stored claims for a case-insensitive substring match against
// content, optionally filtered by domain, newest-first up to limit. This is
// a best-effort convenience query, not consistency-critical.
func (r *Repository) Search(query, domain string, limit int) ([]QueryResult, error) {
	if err := r.requireInit(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	needle := strings.ToLower(query)

	latest, err := r.latestVerifications()
	if err != nil {
		return nil, err
	}

	var results []QueryResult
	err = r.store.IterObjects(object.TypeClaim, func(o object.TruthObject) error {
		cl := o.(*object.Claim)
		if domain != "" && cl.Domain != domain {
			return nil
		}
		if needle != "" && !strings.Contains(strings.ToLower(cl.Content), needle) {
			return nil
		}
		qr := QueryResult{
			Hash:      cl.Hash,
			Type:      object.TypeClaim,
			Content:   cl.Content,
			Domain:    cl.Domain,
			State:     cl.State,
			Timestamp: cl.Timestamp,
		}
		if v, ok := latest[cl.Hash]; ok {
			qr.Consensus = v.Consensus.Value
			qr.Passed = v.Consensus.Passed
		}
		results = append(results, qr)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Timestamp.After(results[j].Timestamp)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Log walks the verification history and resolves each entry into a
// QueryResult with its claim's content, newest-first up to limit.
func (r *Repository) Log(limit int) ([]QueryResult, error) {
	history, err := r.History(limit)
	if err != nil {
		return nil, err
	}

	results := make([]QueryResult, 0, len(history))
	for _, v := range history {
		qr := QueryResult{
			Hash:      v.Hash,
			Type:      object.TypeVerification,
			Consensus: v.Consensus.Value,
			Passed:    v.Consensus.Passed,
			Timestamp: v.Timestamp,
		}
		if loaded, err := r.store.Load(object.TypeClaim, v.ClaimHash); err == nil {
			cl := loaded.(*object.Claim)
			qr.Content = cl.Content
			qr.Domain = cl.Domain
			qr.State = cl.State
		}
		results = append(results, qr)
	}
	return results, nil
}

// latestVerifications maps each claim hash to its most recent verification.
func (r *Repository) latestVerifications() (map[string]*object.Verification, error) {
	latest := make(map[string]*object.Verification)
	err := r.store.IterObjects(object.TypeVerification, func(o object.TruthObject) error {
		v := o.(*object.Verification)
		if cur, ok := latest[v.ClaimHash]; !ok || v.Timestamp.After(cur.Timestamp) {
			latest[v.ClaimHash] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return latest, nil
}
