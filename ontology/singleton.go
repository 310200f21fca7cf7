package ontology

import "sync"

// Global service instance and initialization guard. Prefer passing a
// *Service explicitly; the singleton exists for callers that need a
// process-wide handle.
var (
	globalService *Service
	globalOnce    sync.Once
)

// Global returns the singleton ontology service. Creates a service over
// an empty registry on first call if not already initialized.
func Global() *Service {
	globalOnce.Do(func() {
		globalService = NewServiceFromRegistry(NewRegistry(), nil)
	})
	return globalService
}

// InitGlobal initializes the global service with a custom instance.
// Must be called before any call to Global() to take effect.
// Safe for concurrent use but only the first call has any effect.
func InitGlobal(s *Service) {
	globalOnce.Do(func() {
		globalService = s
	})
}

// ResetGlobal resets the global service for testing purposes.
// This is NOT thread-safe and should only be used in tests.
func ResetGlobal() {
	globalOnce = sync.Once{}
	globalService = nil
}
