package phantom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/go-phantom"
)

func TestFilterBuilders(t *testing.T) {
	assert.Equal(t, phantom.Filter(`action="get ticket"`), phantom.Eq("action", "get ticket"))
	assert.Equal(t, phantom.Filter("playbook_run_id=7"), phantom.Eq("playbook_run_id", 7))
	assert.Equal(t, phantom.Filter("isnull=True"), phantom.Eq("isnull", true))
	assert.Equal(t, phantom.Filter("isnull=False"), phantom.Eq("isnull", false))
	assert.Equal(t, phantom.Filter(`type__in=["a","b"]`), phantom.Raw("type__in", `["a","b"]`))
}

func TestQuery_Encode(t *testing.T) {
	tests := []struct {
		name  string
		query *phantom.Query
		want  string
	}{
		{
			name:  "nil query",
			query: nil,
			want:  "page=0&page_size=0&include_expensive",
		},
		{
			name:  "pagination",
			query: &phantom.Query{Page: 2, PageSize: 50},
			want:  "page=2&page_size=50&include_expensive",
		},
		{
			name: "sort and filters keep order",
			query: &phantom.Query{
				PageSize: 1,
				Sort:     "id",
				Order:    "desc",
				Filters: []phantom.Filter{
					phantom.Eq("playbook_run_id", 7),
					phantom.Eq("action", "get ticket"),
				},
			},
			want: "page=0&page_size=1&sort=id&order=desc&_filter_playbook_run_id=7&_filter_action=%22get+ticket%22&include_expensive",
		},
		{
			name:  "expression containing equals sign",
			query: &phantom.Query{Filters: []phantom.Filter{phantom.Raw("message__contains", "a=b")}},
			want:  "page=0&page_size=0&_filter_message__contains=a%3Db&include_expensive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Encode())
		})
	}
}

func TestQuery_EncodeIsDeterministic(t *testing.T) {
	q := &phantom.Query{Filters: []phantom.Filter{phantom.Eq("b", 1), phantom.Eq("a", 2)}}
	assert.Equal(t, q.Encode(), q.Encode())
}
