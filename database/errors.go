// database/errors.go
package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/go-sql-driver/mysql"
)

// Коды ошибок MySQL
const (
	errDuplicateEntry    = 1062
	errForeignKeyMissing = 1452
)

// classify переводит ошибку драйвера в ошибку приложения.
// Решение принимается только по коду ошибки, текст сообщения не разбирается.
func classify(err error, field string) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDuplicateEntry:
			return errs.Validation("Запись уже существует", map[string]string{field: "уже используется"})
		case errForeignKeyMissing:
			return errs.Validation("Связанная запись не найдена", map[string]string{field: "не существует"})
		}
	}
	return errs.Internal(err)
}

// notFound переводит sql.ErrNoRows в errs.NotFound
func notFound(err error, resource, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NotFound(resource, id)
	}
	return errs.Internal(err)
}

// likePrefix экранирует спецсимволы LIKE и добавляет % в конец
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}

// placeholders возвращает "?,?,?" для n аргументов
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
