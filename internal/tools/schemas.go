package tools

import "github.com/chadiek/voxline/internal/llm"

// Schemas returns the fixed, closed set of tool schemas advertised to the
// LLM Client Adapter — fixed at session construction per spec §4.1, one
// entry per constant this package dispatches on.
func Schemas() []llm.ToolSchema {
	return []llm.ToolSchema{
		{
			Name:        GetMenu,
			Description: "Look up the current menu for this business.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        PlaceOrder,
			Description: "Place a food order for the caller.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"items": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"name":        map[string]any{"type": "string"},
								"quantity":    map[string]any{"type": "number"},
								"price_cents": map[string]any{"type": "number"},
							},
							"required": []string{"name", "quantity"},
						},
					},
					"contact_name":  map[string]any{"type": "string"},
					"contact_phone": map[string]any{"type": "string"},
				},
				"required": []string{"items"},
			},
		},
		{
			Name:        MakeReservation,
			Description: "Book a table reservation for the caller.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"party_size":    map[string]any{"type": "number"},
					"when":          map[string]any{"type": "string", "description": "RFC3339 timestamp"},
					"contact_name":  map[string]any{"type": "string"},
					"contact_phone": map[string]any{"type": "string"},
				},
				"required": []string{"party_size", "when"},
			},
		},
		{
			Name:        CheckOrderStatus,
			Description: "Check the status of an existing order.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"order_id": map[string]any{"type": "string"},
				},
				"required": []string{"order_id"},
			},
		},
		{
			Name:        CancelOrModify,
			Description: "Cancel or modify an existing order or reservation.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"reference_id": map[string]any{"type": "string"},
					"instructions": map[string]any{"type": "string"},
				},
				"required": []string{"reference_id"},
			},
		},
		{
			Name:        TransferToHuman,
			Description: "Transfer the caller to a human team member.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}
