//go:build tools

package tools

// Закрепляем версию goose CLI для прогонов миграций
import (
	_ "github.com/pressly/goose/v3/cmd/goose"
)
