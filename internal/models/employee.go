package models

import "time"

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

// MaxFailedAttempts bloqueia a conta na quinta senha errada.
const MaxFailedAttempts = 5

type Employee struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Name               string         `gorm:"size:150;not null" json:"name"`
	RegistrationNumber string         `gorm:"size:50;uniqueIndex;not null" json:"registration_number"`
	Password           string         `gorm:"size:255;not null;default:''" json:"-"`
	Email              string         `gorm:"size:150" json:"email"`
	Whatsapp           string         `gorm:"size:30" json:"whatsapp"`
	Funcao             string         `gorm:"size:100" json:"funcao"`
	Setor              string         `gorm:"size:100" json:"setor"`
	Distribuicao       string         `gorm:"size:100" json:"distribuicao"`
	Admissao           string         `gorm:"size:30" json:"admissao"`
	Status             EmployeeStatus `gorm:"size:20;not null;index" json:"status"`
	FailedAttempts     int            `gorm:"not null;default:0" json:"failed_attempts"`
	IsLocked           bool           `gorm:"not null" json:"is_locked"`
	ProfileImageURL    *string        `gorm:"type:text" json:"profile_image_url"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (e *Employee) HasPassword() bool {
	return e.Password != ""
}

func (e *Employee) IsActive() bool {
	return e.Status == EmployeeActive
}
