package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plangenie/internal/models"
)

type fakeLLM struct {
	out   string
	err   error
	delay time.Duration
	calls int
	users []string
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	f.users = append(f.users, user)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.out, f.err
}

func ptr[T any](v T) *T { return &v }

func TestParseExtraction(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want models.Filter
	}{
		{
			name: "full extraction",
			out:  `{"operator":"Jio","budget":300,"validity":"2 months","type":"Prepaid","features":["OTT"," Netflix "]}`,
			want: models.Filter{
				Operator: ptr("jio"),
				Budget:   ptr(300.0),
				Validity: ptr(56),
				Type:     ptr("prepaid"),
				Features: []string{"ott", "netflix"},
			},
		},
		{
			name: "operator alias and string budget",
			out:  `{"operator":"vodaphone","budget":"₹1,500","validity":45,"type":null,"features":"voice only, Roaming"}`,
			want: models.Filter{
				Operator: ptr("vi"),
				Budget:   ptr(1500.0),
				Validity: ptr(45),
				Features: []string{"voice only", "roaming"},
			},
		},
		{
			name: "fenced output with nulls",
			out:  "```json\n{\"operator\":null,\"budget\":null,\"validity\":null,\"type\":null,\"features\":null}\n```",
			want: models.Filter{},
		},
		{
			name: "unknown operator is kept lower-cased",
			out:  `{"operator":"BSNL"}`,
			want: models.Filter{Operator: ptr("bsnl")},
		},
		{
			name: "bare numeric validity string",
			out:  `{"validity":"10","budget":"3k"}`,
			want: models.Filter{Validity: ptr(10), Budget: ptr(3000.0)},
		},
		{
			name: "placeholders dropped",
			out:  `{"operator":"any","type":"","features":["", "none"],"budget":0}`,
			want: models.Filter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExtraction(tt.out, nil)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseExtraction() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseExtraction_Malformed(t *testing.T) {
	for _, out := range []string{"I could not understand that.", `{"operator": "jio",`, `{"budget": [}`} {
		_, err := ParseExtraction(out, nil)
		assert.ErrorIs(t, err, ErrExtractionMalformed, out)
	}
}

func TestParseExtraction_ViBrandName(t *testing.T) {
	got, err := ParseExtraction(`{"operator":"Vi India"}`, nil)
	require.NoError(t, err)
	require.NotNil(t, got.Operator)
	assert.Equal(t, "vi", *got.Operator)
}

func TestParseExtraction_Aliases(t *testing.T) {
	got, err := ParseExtraction(`{"operator":"jeeo"}`, map[string]string{"jeeo": "jio"})
	require.NoError(t, err)
	assert.Equal(t, "jio", *got.Operator)
}

func TestResolve(t *testing.T) {
	f := &fakeLLM{out: `{"operator":"airtel","budget":500}`}
	r := New(f, time.Second, zap.NewNop())

	got := r.Resolve(context.Background(), "airtel under 500")
	assert.Equal(t, "airtel", *got.Operator)
	assert.Equal(t, 500.0, *got.Budget)
	assert.Equal(t, 1, f.calls)
	assert.Contains(t, f.users[0], "airtel under 500")
}

func TestResolve_NeverFails(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
	}{
		{"non-json output", &fakeLLM{out: "Sure, here are some plans!"}},
		{"provider error", &fakeLLM{err: errors.New("503")}},
		{"timeout", &fakeLLM{out: `{"operator":"jio"}`, delay: time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.llm, 20*time.Millisecond, zap.NewNop())
			got := r.Resolve(context.Background(), "jio plans")
			assert.True(t, got.IsEmpty())
		})
	}
}

func TestResolve_NilCompleter(t *testing.T) {
	assert.True(t, New(nil, time.Second, nil).Resolve(context.Background(), "x").IsEmpty())
}
