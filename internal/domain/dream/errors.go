package dream

// Error codes surfaced through apperrors.
const (
	CodeInvalidInput       = "invalid_input"
	CodeNotFound           = "not_found"
	CodeEntitlementDenied  = "entitlement_denied"
	CodeAlreadyInterpreted = "already_interpreted"
	CodeCancelled          = "request_cancelled"
	CodeDreamError         = "dream_error"
)
