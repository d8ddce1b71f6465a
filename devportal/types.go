package devportal

import "context"

// Workflow states reported by the developer portal
const (
	StatusCreated  = "CREATED"  // waiting for approval
	StatusApproved = "APPROVED" // active
	StatusRejected = "REJECTED"
	StatusOnHold   = "ON_HOLD"   // subscription waiting for approval
	StatusActive   = "UNBLOCKED" // active subscription
)

// KeyType selects the environment keys are generated for
type KeyType string

const (
	KeyTypeProduction KeyType = "PRODUCTION"
	KeyTypeSandbox    KeyType = "SANDBOX"
)

// Application is an application owned by the subscriber
type Application struct {
	ID               string `json:"applicationId"`
	Name             string `json:"name"`
	ThrottlingPolicy string `json:"throttlingPolicy"`
	Description      string `json:"description,omitempty"`
	Status           string `json:"status,omitempty"`
}

// Pending reports whether creating the application is waiting for approval
func (a *Application) Pending() bool {
	return a.Status == StatusCreated
}

// ApplicationRequest is the payload to create an application
type ApplicationRequest struct {
	Name             string `json:"name"`
	ThrottlingPolicy string `json:"throttlingPolicy"`
	Description      string `json:"description,omitempty"`
}

// Subscription links an application to an API
type Subscription struct {
	ID            string `json:"subscriptionId"`
	APIID         string `json:"apiId"`
	ApplicationID string `json:"applicationId"`
	Tier          string `json:"throttlingPolicy"`
	Status        string `json:"status,omitempty"`
}

// Pending reports whether the subscription is waiting for approval
func (s *Subscription) Pending() bool {
	return s.Status == StatusOnHold
}

// SubscriptionRequest is the payload to subscribe an application
type SubscriptionRequest struct {
	APIID         string `json:"apiId"`
	ApplicationID string `json:"applicationId"`
	Tier          string `json:"throttlingPolicy"`
}

// KeyRequest is the payload to generate consumer keys
type KeyRequest struct {
	KeyType        KeyType  `json:"keyType"`
	GrantTypes     []string `json:"grantTypesToBeSupported"`
	ValidityPeriod int      `json:"validityTime"`
	Scopes         []string `json:"scopes,omitempty"`
}

// Keys are the consumer credentials of an application
type Keys struct {
	ConsumerKey    string  `json:"consumerKey"`
	ConsumerSecret string  `json:"consumerSecret"`
	KeyType        KeyType `json:"keyType"`
	State          string  `json:"keyState,omitempty"`
}

// Pending reports whether key generation is waiting for approval
func (k *Keys) Pending() bool {
	return k.State == StatusCreated
}

// TokenRequest is the payload to generate an access token
type TokenRequest struct {
	KeyType        KeyType  `json:"keyType"`
	ValidityPeriod int      `json:"validityPeriod"`
	Scopes         []string `json:"scopes,omitempty"`
}

// AccessToken is an access token for the application
type AccessToken struct {
	Token        string   `json:"accessToken"`
	Scopes       []string `json:"tokenScopes,omitempty"`
	ValidityTime int      `json:"validityTime"`
}

// API is the subset of the developer portal used by the wizard steps
type API interface {
	CreateApplication(ctx context.Context, req ApplicationRequest) (*Application, error)
	Subscribe(ctx context.Context, req SubscriptionRequest) (*Subscription, error)
	GenerateKeys(ctx context.Context, applicationID string, req KeyRequest) (*Keys, error)
	GenerateToken(ctx context.Context, applicationID string, req TokenRequest) (*AccessToken, error)
}
