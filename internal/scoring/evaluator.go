package scoring

/*
Файл evaluator.go реализует автоматическую часть скрининга: прогон актива
через активные шариатские правила на основе словарных эвристик.

Контракт:
- Чистая функция над (актив, правила): никаких сайд-эффектов, детерминизм.
- Правило с категорией без эвалуатора или неприменимое к типу актива
  НЕ попадает в знаменатель — балл не размывается "пустыми" проверками.
- Падение оценки одного правила изолируется: логируем, пропускаем, идем дальше.
- Если не оценено ни одного правила — нейтральные 0.5 ("недостаточно данных",
  а не "полностью чист" и не "полный запрет").
*/

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
	"go.uber.org/zap"
)

// RuleResult — выход автоматического эвалуатора
type RuleResult struct {
	Score   float64  // в [0,1]: доля положительных вердиктов
	Reasons []string // по одной строке на каждое оцененное правило
}

const neutralScore = 0.5

// Встроенные словари-индикаторы по категориям (регистронезависимые подстроки)
var (
	ribaIndicators   = []string{"lending", "staking rewards"}
	ghararIndicators = []string{"meme", "random"}
	haramKeywords    = []string{"gambling", "alcohol", "tobacco", "weapons", "adult"}
)

// ruleCriteria — опциональное расширение словаря через rule_criteria.
// Пример: {"keywords": ["casino", "interest-bearing"]}
type ruleCriteria struct {
	Keywords []string `json:"keywords"`
}

type Evaluator struct {
	logger *zap.Logger
}

func NewEvaluator(logger *zap.Logger) *Evaluator {
	return &Evaluator{logger: logger.Named("evaluator")}
}

// Evaluate прогоняет актив через набор правил и возвращает балл с причинами.
func (e *Evaluator) Evaluate(asset *domain.Asset, rules []domain.ComplianceRule) RuleResult {
	var positive, evaluated int
	reasons := make([]string, 0, len(rules))

	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}

		ok, reason, applied := e.applyRule(asset, rule)
		if !applied {
			continue
		}

		evaluated++
		if ok {
			positive++
		}
		reasons = append(reasons, reason)
	}

	if evaluated == 0 {
		return RuleResult{Score: neutralScore, Reasons: reasons}
	}
	return RuleResult{Score: float64(positive) / float64(evaluated), Reasons: reasons}
}

// applyRule оценивает одно правило.
// applied=false означает "в знаменатель не идет": категория без эвалуатора,
// неприменимый тип актива либо паника внутри оценки.
func (e *Evaluator) applyRule(asset *domain.Asset, rule domain.ComplianceRule) (ok bool, reason string, applied bool) {
	// Изоляция отказов: одно сломанное правило не валит весь прогон
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("rule evaluation panicked, skipping rule",
				zap.String("rule", rule.Name),
				zap.Any("panic", r))
			ok, reason, applied = false, "", false
		}
	}()

	category, known := domain.ParseRuleCategory(rule.Category)
	if !known {
		e.logger.Warn("rule category has no evaluator, rule skipped",
			zap.String("rule", rule.Name),
			zap.String("category", rule.Category))
		return false, "", false
	}

	extra := e.extraKeywords(rule)

	switch category {
	case domain.CategoryRiba:
		// Процентные механики детектируем только у крипты
		if asset.AssetType != domain.AssetCrypto {
			return false, "", false
		}
		if containsAny(asset.Description, append(ribaIndicators, extra...)) {
			return false, fmt.Sprintf("%s: Asset may involve interest-based mechanisms", rule.Name), true
		}
		return true, fmt.Sprintf("%s: No clear interest-based mechanisms detected", rule.Name), true

	case domain.CategoryGharar:
		if asset.AssetType != domain.AssetCrypto {
			return false, "", false
		}
		if containsAny(asset.Name, append(ghararIndicators, extra...)) {
			return false, fmt.Sprintf("%s: Asset may involve excessive uncertainty (gharar)", rule.Name), true
		}
		return true, fmt.Sprintf("%s: Acceptable level of uncertainty", rule.Name), true

	case domain.CategoryHaramSectors:
		// Секторальная проверка применима к любому типу актива
		keywords := append(haramKeywords, extra...)
		if containsAny(asset.Name, keywords) || containsAny(asset.Description, keywords) {
			return false, fmt.Sprintf("%s: Asset may be related to prohibited sectors", rule.Name), true
		}
		return true, fmt.Sprintf("%s: Asset not related to prohibited sectors", rule.Name), true
	}

	// Недостижимо при полном switch по закрытому enum
	return false, "", false
}

// extraKeywords разбирает rule_criteria. Битый JSON не фатален:
// правило оценивается по встроенному словарю.
func (e *Evaluator) extraKeywords(rule domain.ComplianceRule) []string {
	if len(rule.Criteria) == 0 {
		return nil
	}
	var c ruleCriteria
	if err := json.Unmarshal(rule.Criteria, &c); err != nil {
		e.logger.Warn("malformed rule_criteria, falling back to built-in keywords",
			zap.String("rule", rule.Name),
			zap.Error(err))
		return nil
	}
	return c.Keywords
}

func containsAny(text string, keywords []string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
