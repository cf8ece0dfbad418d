package postgres

import (
	"strings"
	"testing"
)

func TestTaskQueries(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		query string
		want  []string
	}{
		"update keeps a raised escalation level": {
			query: updateTaskQuery,
			want: []string{
				"escalation_level = GREATEST(escalation_level, $24)",
				"WHERE id = $1 AND version = $2",
				"RETURNING version, escalation_level, updated_at",
			},
		},
		"list pages by created_at and id": {
			query: listTasksQuery,
			want: []string{
				"(created_at, id) < ($7, $8::text)",
				"ORDER BY created_at DESC, id DESC",
			},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			for _, fragment := range tt.want {
				if !strings.Contains(tt.query, fragment) {
					t.Errorf("query is missing %q:\n%s", fragment, tt.query)
				}
			}
		})
	}

	if strings.Contains(updateTaskQuery, "escalation_level = $24") {
		t.Errorf("update must not overwrite escalation_level with the caller's value")
	}
}
