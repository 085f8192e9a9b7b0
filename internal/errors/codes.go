package errors

// Error code constants returned in API responses.
// Format: CATEGORY_SPECIFIC_DETAIL; clients map these to display messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthUserDeactivated    = "AUTH_USER_DEACTIVATED"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput    = "VALIDATION_INVALID_INPUT"
	ValidationMissingField    = "VALIDATION_MISSING_FIELD"
	ValidationInvalidQuantity = "VALIDATION_INVALID_QUANTITY"
	ValidationInvalidPrice    = "VALIDATION_INVALID_PRICE"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound  = "RESOURCE_NOT_FOUND"
	UserNotFound      = "USER_NOT_FOUND"
	ProductNotFound   = "PRODUCT_NOT_FOUND"
	CartItemNotFound  = "CART_ITEM_NOT_FOUND"
	OrderNotFound     = "ORDER_NOT_FOUND"

	// ==================== Conflicts (CONFLICT_) ====================
	ConflictDuplicate  = "CONFLICT_DUPLICATE"
	ConflictReferenced = "CONFLICT_REFERENCED"

	// ==================== Cart / checkout (CART_) ====================
	CartEmpty             = "CART_EMPTY"
	CartInsufficientStock = "CART_INSUFFICIENT_STOCK"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalDatabase    = "INTERNAL_DATABASE"
	InternalExternalAPI = "INTERNAL_EXTERNAL_API"
)
