// Package guest stores the names a caregiver typed before creating an
// account, so later questionnaires can address them by name.
package guest

import (
	"context"

	"github.com/abhisek/acompana/internal/placeholder"
)

// Progress is the locally cached guest state.
type Progress struct {
	UserName       string `json:"user_name,omitempty"`
	CaregivingName string `json:"caregiving_name,omitempty"`
}

// IsZero reports whether nothing has been captured.
func (p Progress) IsZero() bool {
	return p.UserName == "" && p.CaregivingName == ""
}

// Merge returns p with the non-empty fields of other applied on top.
func (p Progress) Merge(other Progress) Progress {
	if v := placeholder.Sanitize(other.UserName); v != "" {
		p.UserName = v
	}
	if v := placeholder.Sanitize(other.CaregivingName); v != "" {
		p.CaregivingName = v
	}
	return p
}

// Lookup exposes the progress to the template resolver.
func (p Progress) Lookup(key string) (string, bool) {
	switch key {
	case placeholder.KeyOwnName:
		return p.UserName, p.UserName != ""
	case placeholder.KeyCaredName:
		return p.CaregivingName, p.CaregivingName != ""
	}
	return "", false
}

// Store persists guest progress. Load returns a zero Progress when nothing
// has been saved.
type Store interface {
	Load(ctx context.Context) (Progress, error)
	Save(ctx context.Context, p Progress) error
	Clear(ctx context.Context) error
}

// Discard is a Store that keeps nothing.
type Discard struct{}

func (Discard) Load(context.Context) (Progress, error) { return Progress{}, nil }
func (Discard) Save(context.Context, Progress) error   { return nil }
func (Discard) Clear(context.Context) error            { return nil }

// Names merges captured names into a Store.
type Names struct {
	Store Store
}

// SaveNames keeps the non-empty names, leaving earlier values otherwise.
func (n Names) SaveNames(ctx context.Context, ownName, caredName string) error {
	p, err := n.Store.Load(ctx)
	if err != nil {
		return err
	}
	return n.Store.Save(ctx, p.Merge(Progress{UserName: ownName, CaregivingName: caredName}))
}
