package models

const (
	SettingCompanyName   = "companyName"
	SettingLogoURL       = "logoUrl"
	SettingAdminPassword = "adminPassword"
	SettingRecoveryEmail = "recoveryEmail"
	SettingOrderBudget   = "orderBudget"
)

type Setting struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Key   string `gorm:"size:100;uniqueIndex;not null" json:"key"`
	Value string `gorm:"type:text;not null" json:"value"`
}
