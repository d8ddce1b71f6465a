// Package apiconfig holds the configuration of an API being edited in the
// publisher. The Editor is the only owner of the configuration; views send
// Actions through Dispatch instead of mutating it.
package apiconfig

import (
	"fmt"
	"slices"
)

// Visibility controls who can see an API in the store
type Visibility string

const (
	VisibilityPublic     Visibility = "PUBLIC"
	VisibilityPrivate    Visibility = "PRIVATE"
	VisibilityRestricted Visibility = "RESTRICTED"
)

// Config is the editable configuration of an API
type Config struct {
	ResponseCaching bool       `json:"responseCaching" yaml:"response_caching"`
	CacheTimeout    int        `json:"cacheTimeout" yaml:"cache_timeout"` // seconds
	Visibility      Visibility `json:"visibility" yaml:"visibility"`
	VisibleRoles    []string   `json:"visibleRoles,omitempty" yaml:"visible_roles,omitempty"`
	Transports      []string   `json:"transport" yaml:"transports"`
	Tags            []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// DefaultCacheTimeout is applied when caching is enabled without a timeout
const DefaultCacheTimeout = 300

func (c Config) clone() Config {
	c.VisibleRoles = slices.Clone(c.VisibleRoles)
	c.Transports = slices.Clone(c.Transports)
	c.Tags = slices.Clone(c.Tags)
	return c
}

func (c Config) equal(o Config) bool {
	return c.ResponseCaching == o.ResponseCaching &&
		c.CacheTimeout == o.CacheTimeout &&
		c.Visibility == o.Visibility &&
		slices.Equal(c.VisibleRoles, o.VisibleRoles) &&
		slices.Equal(c.Transports, o.Transports) &&
		slices.Equal(c.Tags, o.Tags)
}

// InvalidActionError is returned for unknown actions or values of the wrong type
type InvalidActionError struct {
	Kind   ActionKind
	Reason string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action '%s': %s", e.Kind, e.Reason)
}
