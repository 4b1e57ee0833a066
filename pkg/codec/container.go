// ABOUTME: Container format selection
// ABOUTME: Process-wide default container plus per-session overrides
package codec

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Container identifies the envelope carrying Speex packets
type Container int

const (
	// ContainerDefault defers to the process-wide default at open time
	ContainerDefault Container = iota
	// ContainerOgg is the page-based Ogg container
	ContainerOgg
	// ContainerWAV is the chunk-based RIFF/WAVE container
	ContainerWAV
)

func (c Container) String() string {
	switch c {
	case ContainerDefault:
		return "default"
	case ContainerOgg:
		return "ogg"
	case ContainerWAV:
		return "wav"
	default:
		return fmt.Sprintf("Container(%d)", int(c))
	}
}

// ParseContainer converts a name such as "ogg" or "wav" to a Container
func ParseContainer(name string) (Container, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return ContainerDefault, nil
	case "ogg", "spx", "oga":
		return ContainerOgg, nil
	case "wav", "wave", "riff":
		return ContainerWAV, nil
	default:
		return ContainerDefault, fmt.Errorf("unknown container: %q", name)
	}
}

var (
	defaultMu        sync.RWMutex
	defaultContainer = ContainerOgg
)

// SetDefaultContainer changes the container used by sessions whose Config
// leaves Container unset. Sessions already open are not affected.
func SetDefaultContainer(c Container) error {
	if c != ContainerOgg && c != ContainerWAV {
		return fmt.Errorf("invalid default container: %v", c)
	}
	defaultMu.Lock()
	defaultContainer = c
	defaultMu.Unlock()
	return nil
}

// DefaultContainer returns the process-wide default container
func DefaultContainer() Container {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultContainer
}

// ContainerForPath picks a container from a file name's extension
func ContainerForPath(path string) (Container, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".spx", ".ogg", ".oga":
		return ContainerOgg, nil
	case ".wav":
		return ContainerWAV, nil
	default:
		return ContainerDefault, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// resolve returns c, or the process-wide default when c is unset
func (c Container) resolve() Container {
	if c == ContainerDefault {
		return DefaultContainer()
	}
	return c
}
