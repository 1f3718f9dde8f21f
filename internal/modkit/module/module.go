// Package module defines the minimal contract for a modkit module
package module

import (
	phttp "modguard/internal/platform/net/http"
)

// Module is the sibling contract to modkit.Module; kept here to avoid import
// knots when a module also exports its own ports type
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
