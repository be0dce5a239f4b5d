package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"

	FieldIndicator = "indicator"
	FieldFiltro    = "filtro"
	FieldCount     = "count"
	FieldCacheHit  = "cache_hit"
	FieldUpstream  = "upstream_status"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentINEGI  = "inegi"
	ComponentCache  = "cache"
	ComponentConfig = "config"
	ComponentCLI    = "cli"
)
