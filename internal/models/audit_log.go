package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AuditAction string

const (
	AuditLoginAdmin      AuditAction = "login_admin"
	AuditLoginEmployee   AuditAction = "login_funcionario"
	AuditAccountLocked   AuditAction = "conta_bloqueada"
	AuditOrderCreated    AuditAction = "pedido_criado"
	AuditOrderEdited     AuditAction = "pedido_editado"
	AuditOrderDeleted    AuditAction = "pedido_excluido"
	AuditPasswordCreated AuditAction = "senha_criada"
	AuditPasswordRecover AuditAction = "recuperacao_senha"
	AuditEmployeeUnlock  AuditAction = "funcionario_desbloqueado"
)

// Somente inserção. EmployeeID nulo indica o administrador.
type AuditLog struct {
	ID                   uint                `gorm:"primaryKey" json:"id"`
	EmployeeID           *uint               `gorm:"index" json:"employee_id"`
	EmployeeName         string              `gorm:"size:150" json:"employee_name"`
	EmployeeRegistration string              `gorm:"size:50" json:"employee_registration"`
	Action               AuditAction         `gorm:"size:40;index" json:"action"`
	OrderID              *uint               `json:"order_id"`
	OrderTotal           decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"order_total"`
	CycleReference       string              `gorm:"size:20" json:"cycle_reference"`
	IPAddress            string              `gorm:"size:64" json:"ip_address"`
	Details              string              `gorm:"type:text" json:"details"`
	CreatedAt            time.Time           `gorm:"index" json:"created_at"`
}
