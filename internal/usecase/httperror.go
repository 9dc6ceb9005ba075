package usecase

import "errors"

// usecaseからhandlerへHTTPステータス付きで返すエラー。
type HTTPError struct {
	Status  int
	Message string

	// フォーム検証のように複数の問題をまとめて返すとき
	Details []string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// 検証エラーは全件まとめて返す（最初の1件で打ち切らない）
func NewValidationError(status int, message string, details []string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
		Details: details,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
