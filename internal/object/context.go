package object

import "time"

// Context is read-mostly reference data describing a knowledge domain: a
// description, the validators that own it, and an optional threshold
// override for consensus within that domain.
type Context struct {
	Hash        string    `json:"hash,omitempty"`
	Domain      string    `json:"domain"`
	Description string    `json:"description"`
	Validators  []string  `json:"validators,omitempty"`
	Threshold   float64   `json:"threshold,omitempty"` // 0 means repository default
	Timestamp   time.Time `json:"timestamp"`
}

// NewContext builds a context record for a domain.
func NewContext(domain, description string, validators []string, threshold float64) *Context {
	return &Context{
		Domain:      domain,
		Description: description,
		Validators:  validators,
		Threshold:   threshold,
		Timestamp:   now(),
	}
}

func (c *Context) ObjectType() Type     { return TypeContext }
func (c *Context) ObjectHash() string   { return c.Hash }
func (c *Context) SetHash(h string)     { c.Hash = h }
func (c *Context) CreatedAt() time.Time { return c.Timestamp }

func (c *Context) CanonicalPayload() map[string]any {
	validators := make([]any, len(c.Validators))
	for i, v := range c.Validators {
		validators[i] = v
	}
	return map[string]any{
		"type":        string(TypeContext),
		"domain":      c.Domain,
		"description": c.Description,
		"validators":  validators,
		"threshold":   c.Threshold,
	}
}
