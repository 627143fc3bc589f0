// internal/app/system/limits/limits.go
package limits

// Request body size limits.
const (
	// MaxJSONBody caps every JSON request body. Club descriptions are the
	// largest field we accept.
	MaxJSONBody = 64 << 10 // 64 KB
)
