package builder

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/simon020286/go-wizard/devportal"
	"github.com/simon020286/go-wizard/models"
)

// Dependencies are the collaborators handed to every handler factory
type Dependencies struct {
	Portal devportal.API // Developer portal the steps call
	Out    io.Writer     // Where steps print results for the user
}

// HandlerFactory creates a Handler from a step configuration
type HandlerFactory func(config map[string]any, deps Dependencies) (models.Handler, error)

var (
	// registry maps every step kind to its factory
	registry = make(map[models.StepKind]HandlerFactory)
	mu       sync.RWMutex
)

// RegisterStepKind registers the factory for a step kind.
// This function is called by init() in the steps package.
func RegisterStepKind(kind models.StepKind, factory HandlerFactory) {
	mu.Lock()
	defer mu.Unlock()
	registry[kind] = factory
}

// GetHandlerFactory returns the factory for a step kind
func GetHandlerFactory(kind models.StepKind) (HandlerFactory, error) {
	mu.RLock()
	defer mu.RUnlock()

	factory, exists := registry[kind]
	if !exists {
		return nil, fmt.Errorf("no handler registered for step kind: %s", kind)
	}
	return factory, nil
}

// ListStepKinds returns all registered step kinds in declaration order
func ListStepKinds() []models.StepKind {
	mu.RLock()
	defer mu.RUnlock()

	kinds := make([]models.StepKind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
