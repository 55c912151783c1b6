package shader

import "log"

// ManagerBuilderOption is a functional option for configuring a Manager.
type ManagerBuilderOption func(*manager)

// WithLogger redirects the manager's diagnostic output. A nil logger keeps the default.
//
// Parameters:
//   - logger: the destination for compile and link logs
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithLogger(logger *log.Logger) ManagerBuilderOption {
	return func(m *manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}
