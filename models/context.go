package models

// ContextKey names a value accumulated by completed steps
type ContextKey string

const (
	KeyAPIID              ContextKey = "api_id"
	KeyThrottlingPolicies ContextKey = "throttling_policies"
	KeyCreatedApp         ContextKey = "created_app"
	KeyCreatedKeyType     ContextKey = "created_key_type"
	KeyCreatedToken       ContextKey = "created_token"
	KeyPendingWorkflow    ContextKey = "pending_workflow"
	KeyRedirect           ContextKey = "redirect"
)

// Context holds the values produced by completed steps
type Context map[ContextKey]any

// Clone returns a shallow copy of the context
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Filter returns a copy restricted to the given keys
func (c Context) Filter(keys []ContextKey) Context {
	out := make(Context, len(keys))
	for _, k := range keys {
		if v, ok := c[k]; ok {
			out[k] = v
		}
	}
	return out
}

// String returns the value at key when it is a string
func (c Context) String(key ContextKey) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

// Strings returns the value at key as a string slice.
// YAML decoding produces []any, so both shapes are accepted.
func (c Context) Strings(key ContextKey) []string {
	switch v := c[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// ContextFromMap converts a decoded YAML map into a Context
func ContextFromMap(m map[string]any) Context {
	out := make(Context, len(m))
	for k, v := range m {
		out[ContextKey(k)] = v
	}
	return out
}

// PendingWorkflow references an approval request created by a blocked step
type PendingWorkflow struct {
	Type        string `json:"workflow_type" yaml:"workflow_type"`
	ExternalRef string `json:"external_ref" yaml:"external_ref"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// WorkflowState is a snapshot of a wizard's progression
type WorkflowState struct {
	CurrentIndex int
	Status       Status
	Context      Context
}

// Approval workflow types for pending workflows
const (
	WorkflowApplicationCreation            = "AM_APPLICATION_CREATION"
	WorkflowSubscriptionCreation           = "AM_SUBSCRIPTION_CREATION"
	WorkflowApplicationRegistrationProd    = "AM_APPLICATION_REGISTRATION_PRODUCTION"
	WorkflowApplicationRegistrationSandbox = "AM_APPLICATION_REGISTRATION_SANDBOX"
)
