// Package summary backfills a natural-language analysis and tag list onto a
// simulation run using an external text generator.
package summary

import (
	"encoding/json"
	"fmt"

	"greencart-ops-api/internal/models"
)

const promptTemplate = `You are an expert operations analyst for GreenCart Logistics. Your task is to analyze simulation data and return a structured JSON object.

CRITICAL RULES:
- You MUST respond with only a raw JSON object.
- Do NOT use markdown formatting such as code fences.
- Do NOT include any text or explanation outside of the JSON object.

JSON STRUCTURE:
The JSON object must contain two keys:
1. "summary": A professional, concise summary (max 3 sentences) that starts with profitability/efficiency, highlights the most significant factor, and concludes with one actionable recommendation.
2. "tags": An array of 3-5 short, descriptive strings reflecting the key outcomes (e.g., "High Profit", "Poor Efficiency", "High Fuel Costs").

EXAMPLE OUTPUT:
{"summary": "The simulation was profitable, but efficiency was low due to a high number of late deliveries. Re-evaluating high-traffic routes is recommended to improve delivery times and overall performance.", "tags": ["Profitable", "Low Efficiency", "High Late Penalties", "Route Optimization Needed"]}

---

SIMULATION DATA TO ANALYZE:
- Total Profit: Rs. %.2f
- Efficiency Score: %.2f%%
- On-time Deliveries: %d
- Late Deliveries: %d
- Fuel Cost Breakdown: %s
`

// BuildPrompt renders the analyst prompt for one run.
func BuildPrompt(sim models.Simulation) string {
	fuel, err := json.Marshal(sim.FuelCostBreakdown)
	if err != nil {
		fuel = []byte("{}")
	}
	return fmt.Sprintf(promptTemplate,
		sim.TotalProfit,
		sim.EfficiencyScore,
		sim.OnTimeDeliveries,
		sim.LateDeliveries,
		fuel,
	)
}
