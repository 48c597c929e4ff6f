package log

// Common field names for structured logging.
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
	FieldUserID      = "user_id"
	FieldTxnID       = "transaction_id"
	FieldTxnName     = "transaction_name"
	FieldDirection   = "direction"
	FieldAmountCents = "amount_cents"
	FieldCycleStart  = "cycle_start"
	FieldCurrency    = "currency"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldQuery       = "query"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentAuth    = "auth"
	ComponentEvents  = "events"
	ComponentExport  = "export"
	ComponentWorker  = "worker"
)
