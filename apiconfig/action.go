package apiconfig

import "fmt"

// ActionKind names a configuration change
type ActionKind string

const (
	ActionResponseCaching ActionKind = "responseCaching"
	ActionCacheTimeout    ActionKind = "cacheTimeout"
	ActionVisibility      ActionKind = "visibility"
	ActionVisibleRoles    ActionKind = "visibleRoles"
	ActionTransports      ActionKind = "transport"
	ActionAddTag          ActionKind = "addTag"
	ActionRemoveTag       ActionKind = "removeTag"
)

// Action is a command sent to the Editor
type Action struct {
	Kind  ActionKind
	Value any
}

// reduce returns the configuration after applying a
func reduce(cfg Config, a Action) (Config, error) {
	switch a.Kind {
	case ActionResponseCaching:
		enabled, ok := a.Value.(bool)
		if !ok {
			return cfg, invalidValue(a, "bool")
		}
		cfg.ResponseCaching = enabled
		if enabled && cfg.CacheTimeout == 0 {
			cfg.CacheTimeout = DefaultCacheTimeout
		}

	case ActionCacheTimeout:
		timeout, ok := a.Value.(int)
		if !ok {
			return cfg, invalidValue(a, "int")
		}
		if timeout < 0 {
			return cfg, &InvalidActionError{Kind: a.Kind, Reason: "timeout cannot be negative"}
		}
		cfg.CacheTimeout = timeout

	case ActionVisibility:
		v, ok := a.Value.(Visibility)
		if !ok {
			return cfg, invalidValue(a, "Visibility")
		}
		switch v {
		case VisibilityPublic, VisibilityPrivate:
			cfg.VisibleRoles = nil
		case VisibilityRestricted:
		default:
			return cfg, &InvalidActionError{Kind: a.Kind, Reason: fmt.Sprintf("unknown visibility '%s'", v)}
		}
		cfg.Visibility = v

	case ActionVisibleRoles:
		roles, ok := a.Value.([]string)
		if !ok {
			return cfg, invalidValue(a, "[]string")
		}
		if cfg.Visibility != VisibilityRestricted {
			return cfg, &InvalidActionError{Kind: a.Kind, Reason: "roles apply only to restricted visibility"}
		}
		cfg.VisibleRoles = roles

	case ActionTransports:
		transports, ok := a.Value.([]string)
		if !ok {
			return cfg, invalidValue(a, "[]string")
		}
		if len(transports) == 0 {
			return cfg, &InvalidActionError{Kind: a.Kind, Reason: "at least one transport is required"}
		}
		for _, t := range transports {
			if t != "http" && t != "https" {
				return cfg, &InvalidActionError{Kind: a.Kind, Reason: fmt.Sprintf("unknown transport '%s'", t)}
			}
		}
		cfg.Transports = transports

	case ActionAddTag:
		tag, ok := a.Value.(string)
		if !ok || tag == "" {
			return cfg, invalidValue(a, "non-empty string")
		}
		for _, existing := range cfg.Tags {
			if existing == tag {
				return cfg, nil
			}
		}
		cfg.Tags = append(cfg.Tags, tag)

	case ActionRemoveTag:
		tag, ok := a.Value.(string)
		if !ok {
			return cfg, invalidValue(a, "string")
		}
		tags := cfg.Tags[:0]
		for _, existing := range cfg.Tags {
			if existing != tag {
				tags = append(tags, existing)
			}
		}
		cfg.Tags = tags

	default:
		return cfg, &InvalidActionError{Kind: a.Kind, Reason: "unknown action"}
	}

	return cfg, nil
}

func invalidValue(a Action, want string) error {
	return &InvalidActionError{
		Kind:   a.Kind,
		Reason: fmt.Sprintf("expected %s value, got %T", want, a.Value),
	}
}
