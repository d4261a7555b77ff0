package summary

import (
	"errors"
	"strings"
	"testing"

	"greencart-ops-api/internal/models"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want Result
	}{
		{
			name: "Plain",
			in:   `{"summary":"Profitable run.","tags":["Profitable","On Time"]}`,
			want: Result{Summary: "Profitable run.", Tags: []string{"Profitable", "On Time"}},
		},
		{
			name: "Fenced",
			in:   "```json\n{\"summary\": \"Good.\", \"tags\": [\"A\"]}\n```",
			want: Result{Summary: "Good.", Tags: []string{"A"}},
		},
		{
			name: "ProseAround",
			in:   "Here is the analysis:\n{\"summary\": \"Late {deliveries} hurt \\\"margin\\\".\", \"tags\": [\"Late\"]}\nThanks!",
			want: Result{Summary: `Late {deliveries} hurt "margin".`, Tags: []string{"Late"}},
		},
		{
			name: "BlankTagsDropped",
			in:   `{"summary":" Fine. ","tags":[" ", "Fuel", ""]}`,
			want: Result{Summary: "Fine.", Tags: []string{"Fuel"}},
		},
		{
			name: "FirstObjectWins",
			in:   `noise {"summary":"one","tags":["x"]} {"summary":"two","tags":["y"]}`,
			want: Result{Summary: "one", Tags: []string{"x"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for name, in := range map[string]string{
		"NoObject":       "I cannot help with that.",
		"Unbalanced":     `{"summary":"x","tags":["a"]`,
		"EmptySummary":   `{"summary":"  ","tags":["a"]}`,
		"MissingTags":    `{"summary":"x"}`,
		"EmptyTags":      `{"summary":"x","tags":[]}`,
		"OnlyBlankTags":  `{"summary":"x","tags":[" "]}`,
		"TagsNotStrings": `{"summary":"x","tags":[1,2]}`,
		"TagsNotArray":   `{"summary":"x","tags":"a"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(in)
			require.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(models.Simulation{
		TotalProfit:       12345.678,
		EfficiencyScore:   66.666,
		OnTimeDeliveries:  8,
		LateDeliveries:    4,
		FuelCostBreakdown: models.FuelCostBreakdown{Low: 10, Medium: 0, High: 35},
	})

	require.Contains(t, p, "Total Profit: Rs. 12345.68")
	require.Contains(t, p, "Efficiency Score: 66.67%")
	require.Contains(t, p, "On-time Deliveries: 8")
	require.Contains(t, p, "Late Deliveries: 4")
	require.Contains(t, p, `Fuel Cost Breakdown: {"Low":10,"Medium":0,"High":35}`)
	require.False(t, strings.Contains(p, "%!"), "no formatting verbs left unresolved")
}
