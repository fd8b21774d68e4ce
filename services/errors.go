package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed     = errors.New("validation failed")
	ErrTeamNameRequired     = errors.New("team name is required")
	ErrLeadNameRequired     = errors.New("team lead name is required")
	ErrLeadEmailRequired    = errors.New("team lead email is required")
	ErrMemberFieldsRequired = errors.New("member name, registration number and hostel type are required")
	ErrRoomRequired         = errors.New("room number is required for hostel residents")
	ErrPaymentProofRequired = errors.New("UPI id, transaction id and payment screenshot are required")
	ErrTooManyMembers       = errors.New("team exceeds the maximum squad size")
	ErrInvalidReviewMarks   = errors.New("review marks are out of range")
	ErrInvalidSession       = errors.New("attendance session is out of range")
	ErrInvalidLimit         = errors.New("registration limit must be positive")
	ErrOpenTimeInPast       = errors.New("scheduled open time must be in the future")
	ErrStatementTooLong     = errors.New("problem statement exceeds the length limit")

	// Состояние окна регистрации / выбора доменов
	ErrRegistrationNotOpen   = errors.New("registration window is not open yet")
	ErrRegistrationClosed    = errors.New("registration is closed")
	ErrRegistrationFull      = errors.New("registration limit has been reached")
	ErrDomainSelectionClosed = errors.New("domain selection is not open")
	ErrDomainAlreadyChosen   = errors.New("team has already confirmed a domain")
	ErrDomainFull            = errors.New("domain has no free slots")

	// Конфликты
	ErrTeamNameConflict    = errors.New("team name is already in use")
	ErrDomainNameConflict  = errors.New("domain name is already in use")
	ErrUserEmailConflict   = errors.New("email address is already in use")
	ErrStatementAlreadySet = errors.New("problem statement has already been submitted")

	// Аутентификация и авторизация
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Сущности
	ErrTeamNotFound   = errors.New("team not found")
	ErrDomainNotFound = errors.New("domain not found")
	ErrMemberNotFound = errors.New("team member not found")
	ErrIssueNotFound  = errors.New("issue not found")
	ErrUserNotFound   = errors.New("user not found")
)
