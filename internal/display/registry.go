package display

import (
	"fmt"

	"github.com/kestrelwm/xflash/internal/host"
)

// Registry resolves frame names against the host's live frame set.
type Registry struct {
	host host.Host
}

// NewRegistry returns a registry backed by the given host.
func NewRegistry(h host.Host) *Registry {
	return &Registry{host: h}
}

// FindByName scans the live frames for an exact name match and returns the
// first hit in host enumeration order. A miss is reported through the bool,
// not as an error; callers branch on it to decide whether to create.
func (r *Registry) FindByName(name string) (*host.FrameInfo, bool, error) {
	if name == "" {
		return nil, false, fmt.Errorf("%w: frame name must not be empty", ErrInvalidArgument)
	}

	frames, err := r.host.ListFrames()
	if err != nil {
		return nil, false, fmt.Errorf("failed to enumerate frames: %w", err)
	}
	for _, f := range frames {
		if f.Name == name {
			return f, true, nil
		}
	}
	return nil, false, nil
}
