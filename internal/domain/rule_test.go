package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRuleCategory(t *testing.T) {
	for _, valid := range []string{"riba_prohibition", "gharar_prohibition", "haram_sectors"} {
		got, ok := ParseRuleCategory(valid)
		assert.True(t, ok, valid)
		assert.Equal(t, RuleCategory(valid), got)
	}

	for _, invalid := range []string{"", "zakat_screening", "RIBA_PROHIBITION", "riba"} {
		_, ok := ParseRuleCategory(invalid)
		assert.False(t, ok, invalid)
	}
}
