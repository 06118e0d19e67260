package packages

import "errors"

var (
	// ErrUserPackageNotFound возвращается, когда купленный пакет не найден
	ErrUserPackageNotFound = errors.New("packages.repository: user package not found")

	// ErrLinkNotFound бронирование не оплачено пакетом
	ErrLinkNotFound = errors.New("packages.repository: package booking link not found")

	// ErrSessionsExhausted списание превысило бы общее количество сессий
	ErrSessionsExhausted = errors.New("packages.repository: not enough sessions")

	// ErrInvalidRules в каталоге лежат некорректные правила доплат
	ErrInvalidRules = errors.New("packages.repository: invalid upgrade rules")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("packages.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("packages.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("packages.repository: failed to scan row")
)
