package scoring

import "github.com/xela07ax/shariaai-compliance-prototype/internal/domain"

// Веса слияния: автоматическим правилам доверяем больше, чем мнению модели.
// Значения — бизнес-контракт, в рантайме не настраиваются.
const (
	weightAutomated = 0.6
	weightAI        = 0.4
)

// Пороги классификации. Широкая "сомнительная" полоса (0.3, 0.8) намеренна:
// при неопределенности финансовый продукт нельзя объявлять ни однозначно
// дозволенным, ни однозначно запретным.
const (
	thresholdHalal = 0.8
	thresholdHaram = 0.3
)

// Combine линейно смешивает автоматический и AI-баллы.
// Для входов из [0,1] результат всегда остается в [0,1].
func Combine(automated, ai float64) float64 {
	return automated*weightAutomated + ai*weightAI
}

// Classify — тотальная чистая функция балла в статус.
// Границы включительные: 0.8 — уже halal, 0.3 — еще haram.
func Classify(score float64) domain.ComplianceStatus {
	if score >= thresholdHalal {
		return domain.StatusHalal
	}
	if score <= thresholdHaram {
		return domain.StatusHaram
	}
	return domain.StatusDoubtful
}
