package pins

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownBackend is returned by Open for names nothing registered.
var ErrUnknownBackend = errors.New("unknown pin backend")

// Global backend registry, populated from init functions.
var backends = make(map[string]func() Driver)

// Register makes a backend available to Open under the given name.
// The last registration for a name wins.
func Register(name string, factory func() Driver) {
	backends[name] = factory
}

// Open validates cfg, builds the named backend and configures it.
func Open(name string, cfg Config) (Driver, error) {
	factory, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := factory()
	if err := d.Configure(cfg); err != nil {
		return nil, err
	}
	return d, nil
}

// Names lists the registered backends in sorted order.
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
