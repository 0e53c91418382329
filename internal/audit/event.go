package audit

import "time"

// Действия аудита — соответствуют enum audit_action в БД
const (
	ActionComplianceCheck = "compliance_check"
	ActionCreate          = "create"
	ActionUpdate          = "update"
	ActionDelete          = "delete"
	ActionLogin           = "login"
)

// Entry — append-only запись аудита. Из этой подсистемы только пишется,
// читают ее консольное API и внешний аудиторский тулинг.
type Entry struct {
	ID           string                 `json:"id"`            // UUID события
	Actor        string                 `json:"actor"`         // user id либо "system"
	Action       string                 `json:"action"`        // см. константы выше
	ResourceType string                 `json:"resource_type"` // "asset", "compliance_rule"
	ResourceID   string                 `json:"resource_id"`
	Metadata     map[string]interface{} `json:"metadata"` // вердикт, балл и т.п.
	Timestamp    time.Time              `json:"timestamp"`
}
