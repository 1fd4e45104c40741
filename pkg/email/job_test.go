package email_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/alertkit/pkg/email"
)

func TestRecipients_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    email.Recipients
		wantErr bool
	}{
		{name: "single string", input: `"a@example.com"`, want: email.Recipients{"a@example.com"}},
		{name: "array", input: `["a@example.com"," b@example.com ",""]`, want: email.Recipients{"a@example.com", "b@example.com"}},
		{name: "blank string", input: `"  "`, want: email.Recipients{}},
		{name: "number", input: `42`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var r email.Recipients
			err := json.Unmarshal([]byte(tt.input), &r)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, r)
		})
	}
}

func TestJob_JSON(t *testing.T) {
	t.Parallel()

	var job email.Job
	require.NoError(t, json.Unmarshal([]byte(`{"to":"a@example.com","template":"welcome","payload":{"name":"Asha"}}`), &job))
	assert.Equal(t, email.Recipients{"a@example.com"}, job.To)
	assert.Equal(t, email.TemplateWelcome, job.Template)

	raw, err := json.Marshal(job)
	require.NoError(t, err)
	assert.JSONEq(t, `{"to":["a@example.com"],"template":"welcome","payload":{"name":"Asha"}}`, string(raw))
}
