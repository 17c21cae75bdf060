package supabase

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/lexflow/lexflow-api-go/internal/domain"
)

// Query builds a PostgREST resource path: table name plus filter,
// ordering and paging parameters.
type Query struct {
	table  string
	params url.Values
	order  []string
}

// From starts a query on table.
func From(table string) *Query {
	return &Query{table: table, params: url.Values{}}
}

// Select sets the column list, including embedded joins.
func (q *Query) Select(columns string) *Query {
	q.params.Set("select", columns)
	return q
}

func (q *Query) filter(column, op, value string) *Query {
	q.params.Add(column, op+"."+value)
	return q
}

func (q *Query) Eq(column, value string) *Query  { return q.filter(column, "eq", value) }
func (q *Query) Gte(column, value string) *Query { return q.filter(column, "gte", value) }
func (q *Query) Lte(column, value string) *Query { return q.filter(column, "lte", value) }
func (q *Query) Lt(column, value string) *Query  { return q.filter(column, "lt", value) }

// In filters column to any of values.
func (q *Query) In(column string, values []string) *Query {
	quoted := make([]string, len(values))
	for i, v := range values {
		if strings.ContainsAny(v, `,()"`) {
			v = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
		}
		quoted[i] = v
	}
	return q.filter(column, "in", "("+strings.Join(quoted, ",")+")")
}

// Scope restricts workspace_id to the scope. An unrestricted scope adds no
// filter; a single workspace uses eq, several use in.
func (q *Query) Scope(s domain.Scope) *Query {
	return q.ScopeColumn("workspace_id", s)
}

// ScopeColumn is Scope on a column other than workspace_id.
func (q *Query) ScopeColumn(column string, s domain.Scope) *Query {
	if s.All {
		return q
	}
	if id, ok := s.Single(); ok {
		return q.Eq(column, id)
	}
	return q.In(column, s.WorkspaceIDs)
}

// Order appends an ordering term.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.order = append(q.order, column+"."+dir)
	return q
}

// Limit caps the number of rows.
func (q *Query) Limit(n int) *Query {
	if n > 0 {
		q.params.Set("limit", strconv.Itoa(n))
	}
	return q
}

// Offset skips rows.
func (q *Query) Offset(n int) *Query {
	if n > 0 {
		q.params.Set("offset", strconv.Itoa(n))
	}
	return q
}

// String renders "table?query".
func (q *Query) String() string {
	params := url.Values{}
	for k, v := range q.params {
		params[k] = v
	}
	if len(q.order) > 0 {
		params.Set("order", strings.Join(q.order, ","))
	}
	if len(params) == 0 {
		return q.table
	}
	return q.table + "?" + params.Encode()
}
