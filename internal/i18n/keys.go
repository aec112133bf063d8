// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAdminAccessDenied      = "auth.admin_access_denied"
	KeyAuthUserSuspended      = "auth.user_suspended"
	KeyAuthPasswordChanged    = "auth.password_changed"

	// Validation
	KeyValidationInvalid = "validation.invalid"
	KeyValidationFailed  = "validation.failed"

	// Errors
	KeyErrorInternal = "error.internal"

	// Varieties
	KeyVarietyCreated  = "variety.created"
	KeyVarietyUpdated  = "variety.updated"
	KeyVarietyDeleted  = "variety.deleted"
	KeyVarietyNotFound = "variety.not_found"

	// Applications
	KeyApplicationCreated           = "application.created"
	KeyApplicationFiled             = "application.filed"
	KeyApplicationStatusChanged     = "application.status_changed"
	KeyApplicationNotFound          = "application.not_found"
	KeyApplicationInvalidTransition = "application.invalid_transition"

	// Tasks
	KeyTaskCreated           = "task.created"
	KeyTaskCompleted         = "task.completed"
	KeyTaskNotFound          = "task.not_found"
	KeyTasksGenerated        = "task.generated"
	KeyTasksAlreadyGenerated = "task.already_generated"

	// Maintenance schedule
	KeyRenewalScheduleGenerated = "renewal.schedule_generated"
	KeyRenewalRescheduled       = "renewal.rescheduled"
	KeyRenewalPaid              = "renewal.paid"
	KeyRenewalNotFound          = "renewal.not_found"
	KeyRenewalDeleted           = "renewal.deleted"

	// Jurisdictions and rules
	KeyJurisdictionCreated  = "jurisdiction.created"
	KeyJurisdictionNotFound = "jurisdiction.not_found"
	KeyRuleSetCreated       = "rule_set.created"
	KeyRuleSetActivated     = "rule_set.activated"
	KeyRuleSetNotFound      = "rule_set.not_found"
	KeyRuleCreated          = "rule.created"
	KeyRuleDeleted          = "rule.deleted"

	// Documents
	KeyDocumentUploaded = "document.uploaded"
	KeyDocumentNotFound = "document.not_found"
)
