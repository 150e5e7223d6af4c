package pipeline

import "fmt"

// ConfigError reports an invalid parameter. It is raised at entry, before
// any data processing begins.
type ConfigError struct {
	Param  string
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Param, e.Detail)
}
