package errors

import goerrors "errors"

// Error is a string-constant error so sentinels can be declared as consts.
type Error string

func (e Error) Error() string { return string(e) }

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return goerrors.Is(err, target)
}
