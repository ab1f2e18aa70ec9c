package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldSource      = "source"
	FieldFormat      = "format"
	FieldRows        = "rows"
	FieldDropped     = "dropped"
	FieldMonth       = "month"
	FieldSupplier    = "supplier"
	FieldDescription = "description"
	FieldFilterField = "filter_field"
	FieldFilterValue = "filter_value"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentSession = "session"
	ComponentSource  = "source"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentImport  = "import"
	ComponentCache   = "cache"
)
