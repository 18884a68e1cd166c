package pathguard

import apperrors "github.com/multi-agent/spoolgen/pkg/errors"

// 拒绝码 (AppError.Code)。
const (
	CodeRequired         = "REQUIRED_FIELD_MISSING"
	CodeInvalidChars     = "INVALID_CHARACTERS"
	CodeTraversal        = "PATH_TRAVERSAL"
	CodeNotAbsolute      = "NOT_ABSOLUTE"
	CodeAdminShare       = "ADMIN_SHARE_DENIED"
	CodeSystemPath       = "SYSTEM_PATH_DENIED"
	CodeNotFound         = "PATH_NOT_FOUND"
	CodeNotADirectory    = "NOT_A_DIRECTORY"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeUnwritable       = "UNWRITABLE"
	CodeListFailed       = "LIST_FAILED"
)

func invalid(op, code, msg string) error {
	return apperrors.Reject(apperrors.ErrInvalidInput, op, code, msg)
}

func forbidden(op, code, msg string) error {
	return apperrors.Reject(apperrors.ErrForbidden, op, code, msg)
}

func notFound(op, msg string) error {
	return apperrors.Reject(apperrors.ErrNotFound, op, CodeNotFound, msg)
}
