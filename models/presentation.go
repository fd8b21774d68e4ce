package models

import "time"

// PresentationTemplate — шаблон презентации, который организаторы
// рассылают командам. Имена JSON-полей читает фронтенд, не менять.
type PresentationTemplate struct {
	FileName string    `json:"fileName"`
	URL      string    `json:"url"`
	SentAt   time.Time `json:"sentAt"`
}
