// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them. Every
// error response carries an HTTP status plus one of these codes.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "already_paired",
//	  "message": "profile already paired"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeValidation        = "validation_failed"
	ErrCodeProfileNotFound   = "profile_not_found"
	ErrCodeEmotoNotFound     = "emoto_not_found"
	ErrCodeEmotoUnavailable  = "emoto_unavailable"
	ErrCodeMessageNotFound   = "message_not_found"
	ErrCodePairCodeNotFound  = "pair_code_not_found"
	ErrCodeAlreadyPaired     = "already_paired"
	ErrCodeNotPaired         = "not_paired"
	ErrCodePairCodeExhausted = "pair_code_exhausted"
	ErrCodeUsernameTaken     = "username_taken"
	ErrCodeMissingUsername   = "missing_username"
)
