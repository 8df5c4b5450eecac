package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"moonal-billing/internal/database"
	"moonal-billing/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// RunAgent answers natural-language questions about the shop's inventory
// and sales. It is strictly read-only: issuing or cancelling tax documents
// through a chat prompt is not something the IRD would smile upon.
func RunAgent(userMessage string, apiKey string) (string, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	today := time.Now().Format("2006-01-02")

	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are the billing assistant for a VAT-registered trading business in Nepal.

	RULES:
	1. INVENTORY: If the user asks for PRICE, STOCK, HS CODE or DETAILS of a product, call 'check_inventory' and read the JSON to answer. Do NOT say you cannot get it.
	2. SALES: If the user asks for sales or revenue, call 'get_sales_report'. Credit notes count negative, so the figure is net of cancellations.
	3. DOCUMENTS: If the user asks about a specific invoice or credit note number, call 'find_invoice'.
	4. You can only READ data. Never promise to create, edit or cancel an invoice.

	USER: %s`, today, userMessage)

	model.Tools = []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "check_inventory",
					Description: "Get the full product list. Use this to find ANY product details like ID, Name, Price, HS Code or Stock.",
				},
				{
					Name:        "get_sales_report",
					Description: "Get net sales revenue and document count for a date range.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
							"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
						},
						Required: []string{"start_date", "end_date"},
					},
				},
				{
					Name:        "find_invoice",
					Description: "Look up one invoice or credit note by its document number, e.g. MU/081-82/0042.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"invoice_number": {Type: genai.TypeString, Description: "The document number"},
						},
						Required: []string{"invoice_number"},
					},
				},
			},
		},
	}

	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			switch funcCall.Name {
			case "check_inventory":
				return executeCheckInventory(ctx, session), nil
			case "get_sales_report":
				return executeSalesReport(ctx, session, funcCall), nil
			case "find_invoice":
				return executeFindInvoice(ctx, session, funcCall), nil
			}
		}
	}

	return printResponse(resp), nil
}

func executeCheckInventory(ctx context.Context, session *genai.ChatSession) string {
	var products []models.Product
	database.DB.Find(&products)

	type SimpleProduct struct {
		ID     uint   `json:"id"`
		Name   string `json:"name"`
		HSCode string `json:"hs_code"`
		Stock  int    `json:"stock"`
		Price  string `json:"price"`
	}
	var simpleList []SimpleProduct
	for _, p := range products {
		simpleList = append(simpleList, SimpleProduct{
			ID:     p.ID,
			Name:   p.Name,
			HSCode: p.HSCode,
			Stock:  p.StockQuantity,
			Price:  p.Price.StringFixed(2),
		})
	}

	jsonBytes, _ := json.Marshal(simpleList)

	finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "check_inventory",
		Response: map[string]interface{}{"inventory": string(jsonBytes)},
	})
	if err != nil {
		return "Error reading inventory."
	}
	return printResponse(finalResp)
}

func executeSalesReport(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	args := funcCall.Args
	startStr := args["start_date"].(string)
	endStr := args["end_date"].(string)

	start, err1 := time.Parse("2006-01-02", startStr)
	end, err2 := time.Parse("2006-01-02", endStr)
	if err1 != nil || err2 != nil {
		return "Error: Dates must be in YYYY-MM-DD format."
	}
	end = end.Add(23*time.Hour + 59*time.Minute)

	report, err := database.GetSalesReport(start, end)
	if err != nil {
		return "Error calculating sales."
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "get_sales_report",
		Response: map[string]interface{}{
			"net_revenue":    report.TotalRevenue.StringFixed(2),
			"document_count": report.TotalCount,
		},
	})
	return printResponse(finalResp)
}

func executeFindInvoice(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	number := funcCall.Args["invoice_number"].(string)

	var inv models.Invoice
	result := database.DB.Where("invoice_number = ?", number).First(&inv)

	response := map[string]interface{}{}
	if result.Error != nil {
		response["status"] = "not found"
	} else {
		response["invoice_number"] = inv.InvoiceNumber
		response["client"] = inv.ClientName
		response["date"] = inv.Date.Format("2006-01-02")
		response["total"] = inv.TotalAmount.StringFixed(2)
		response["status"] = inv.Status
		response["is_credit_note"] = inv.IsCreditNote
		if inv.CreditNoteNumber != "" {
			response["credit_note_number"] = inv.CreditNoteNumber
		}
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "find_invoice",
		Response: response,
	})
	return printResponse(finalResp)
}

func printResponse(resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
