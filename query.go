package phantom

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Filter is a server-side filter expression of the form field=expr, sent as
// _filter_<field>=<expr>.
type Filter string

// Eq builds a filter matching field against value. Strings are quoted the way
// Phantom expects, other values are written as-is.
func Eq(field string, value any) Filter {
	switch v := value.(type) {
	case string:
		return Filter(field + "=" + strconv.Quote(v))
	case bool:
		if v {
			return Filter(field + "=True")
		}
		return Filter(field + "=False")
	default:
		return Filter(fmt.Sprintf("%s=%v", field, v))
	}
}

// Raw builds a filter from an already formatted expression.
func Raw(field, expr string) Filter {
	return Filter(field + "=" + expr)
}

func (f Filter) split() (string, string) {
	field, expr, _ := strings.Cut(string(f), "=")
	return field, expr
}

// Query holds pagination, sorting and filtering for a REST call.
type Query struct {
	Page     int
	PageSize int
	Sort     string
	Order    string
	Filters  []Filter
}

// Encode renders the query string. The output is deterministic: page and
// sort parameters first, then filters in the order given, then the
// include_expensive flag.
func (q *Query) Encode() string {
	if q == nil {
		q = &Query{}
	}

	var b strings.Builder
	b.WriteString("page=")
	b.WriteString(strconv.Itoa(q.Page))
	b.WriteString("&page_size=")
	b.WriteString(strconv.Itoa(q.PageSize))

	if q.Sort != "" {
		b.WriteString("&sort=")
		b.WriteString(url.QueryEscape(q.Sort))
	}
	if q.Order != "" {
		b.WriteString("&order=")
		b.WriteString(url.QueryEscape(q.Order))
	}

	for _, f := range q.Filters {
		field, expr := f.split()
		b.WriteString("&_filter_")
		b.WriteString(url.QueryEscape(field))
		b.WriteString("=")
		b.WriteString(url.QueryEscape(expr))
	}

	b.WriteString("&include_expensive")
	return b.String()
}

// withPage returns a copy of q pointing at page.
func (q *Query) withPage(page int) *Query {
	c := Query{}
	if q != nil {
		c = *q
	}
	c.Page = page
	return &c
}
