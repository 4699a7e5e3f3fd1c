package workflow

import "errors"

var (
	// ErrWorkflowNotFound возвращается, когда процесс согласования не найден
	ErrWorkflowNotFound = errors.New("workflow.repository: workflow not found")

	// ErrStepNotFound возвращается, когда шаг согласования не найден
	ErrStepNotFound = errors.New("workflow.repository: step not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("workflow.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("workflow.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("workflow.repository: failed to scan row")
)
