package notify

import "errors"

var (
	// ErrNotConnected возвращается при публикации без установленного соединения
	ErrNotConnected = errors.New("notify publisher: not connected")

	// ErrPublishFailed возвращается при ошибке публикации события
	ErrPublishFailed = errors.New("notify publisher: publish failed")
)
