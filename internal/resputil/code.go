package resputil

type ErrorCode int

const (
	OK ErrorCode = 0

	// General
	InvalidRequest ErrorCode = 40001

	// Token
	TokenExpired ErrorCode = 40101
	TokenInvalid ErrorCode = 40102

	// Login
	InvalidCredentials ErrorCode = 40106

	// User is not allowed to access the resource.
	// The msg field carries the stable deny reason.
	UserNotAllowed ErrorCode = 40301

	// Referenced entity does not exist (or a relationship is dangling)
	NotFound ErrorCode = 40401

	// Duplicate resource, e.g. username already taken at sign-up
	Conflict ErrorCode = 40901

	// Input is well-formed but out of domain
	ValidationFailed ErrorCode = 42201

	// Store timeout or unavailability; the caller may retry
	Transient ErrorCode = 50301

	// Indicates laziness of the developer
	// Frontend will directly print the message without any translation
	NotSpecified ErrorCode = 99999
)
