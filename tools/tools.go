//go:build tools

// Package tools pins code generators used through go:generate.
package tools

import (
	_ "github.com/dmarkham/enumer"
)
