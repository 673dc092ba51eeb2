package query

import "fmt"

// Dialect renders the bind parameter syntax of a SQL driver.
type Dialect interface {
	Name() string
	Placeholder(n int) string
}

type dollar struct{}

func (dollar) Name() string             { return "postgres" }
func (dollar) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

type numbered struct{}

func (numbered) Name() string             { return "sqlite" }
func (numbered) Placeholder(n int) string { return fmt.Sprintf("?%d", n) }

var (
	// Postgres numbers parameters as $1, $2, ...
	Postgres Dialect = dollar{}
	// SQLite numbers parameters as ?1, ?2, ...
	SQLite Dialect = numbered{}
)

// Placeholders returns count consecutive placeholders starting at 1.
func Placeholders(d Dialect, count int) []string {
	out := make([]string, count)
	for i := range count {
		out[i] = d.Placeholder(i + 1)
	}
	return out
}
