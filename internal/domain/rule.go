package domain

import (
	"encoding/json"
	"time"
)

// RuleCategory — закрытый enum категорий шариатских проверок.
// В БД категория лежит строкой, поэтому перед оценкой она обязана пройти
// через ParseRuleCategory: правило с неизвестной категорией не оценивается
// и не влияет на итоговый балл.
type RuleCategory string

const (
	// CategoryRiba — запрет процентных механик (кредитование, стейкинг-доходность)
	CategoryRiba RuleCategory = "riba_prohibition"

	// CategoryGharar — запрет чрезмерной неопределенности (спекулятивные/мемные активы)
	CategoryGharar RuleCategory = "gharar_prohibition"

	// CategoryHaramSectors — причастность к запрещенным секторам (азартные игры, алкоголь и т.д.)
	CategoryHaramSectors RuleCategory = "haram_sectors"
)

// ParseRuleCategory валидирует строку категории из хранилища.
// Добавление новой категории — осознанное решение на уровне компиляции:
// нужно дописать константу сюда и ветку в эвалуатор.
func ParseRuleCategory(s string) (RuleCategory, bool) {
	switch RuleCategory(s) {
	case CategoryRiba, CategoryGharar, CategoryHaramSectors:
		return RuleCategory(s), true
	}
	return "", false
}

// ComplianceRule — правило скрининга. Авторится администраторами через
// консольное API, для скорера — read-only.
type ComplianceRule struct {
	ID          string `json:"id"`
	Name        string `json:"rule_name"`
	Category    string `json:"rule_category"` // сырая строка из БД, типизируется при оценке
	Description string `json:"rule_description"`

	// Criteria — свободный JSON, интерпретируется по категории.
	// Напр. {"keywords": ["casino"]} расширяет встроенный словарь категории.
	Criteria json.RawMessage `json:"rule_criteria,omitempty"`

	IsActive bool   `json:"is_active"`
	Source   string `json:"rule_source,omitempty"` // ссылка на стандарт (AAOIFI и т.п.)

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
