package gemini

// Request/response shapes for the Generative Language API generateContent
// endpoint. Only the fields this app touches are modeled.

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

type blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type generationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
}

type schema struct {
	Type       string             `json:"type"`
	Properties map[string]*schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`
	Items      *schema            `json:"items,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// text concatenates all text parts of the first candidate.
func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var out string
	for _, p := range r.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out
}

// commandPayload is the raw NLU object as the model emits it. Every field
// is optional; normalization applies the defaulting policy exactly once.
type commandPayload struct {
	Action          *string       `json:"action"`
	Merchant        *string       `json:"merchant"`
	Amount          *float64      `json:"amount"`
	Category        *string       `json:"category"`
	SplitDetails    *splitPayload `json:"splitDetails"`
	DreamName       *string       `json:"dreamName"`
	DreamTarget     *float64      `json:"dreamTarget"`
	IsSmartBuy      *bool         `json:"isSmartBuy"`
	IsWasteful      *bool         `json:"isWasteful"`
	SavingsAmount   *float64      `json:"savingsAmount"`
	FeedbackMessage *string       `json:"feedbackMessage"`
}

type splitPayload struct {
	Total       *float64 `json:"total"`
	PerPerson   *float64 `json:"perPerson"`
	PeopleCount *int     `json:"peopleCount"`
}

// receiptPayload is the raw receipt-extraction object.
type receiptPayload struct {
	Merchant        *string  `json:"merchant"`
	Amount          *float64 `json:"amount"`
	Category        *string  `json:"category"`
	IsSmartBuy      *bool    `json:"isSmartBuy"`
	IsWasteful      *bool    `json:"isWasteful"`
	SavingsAmount   *float64 `json:"savingsAmount"`
	FeedbackMessage *string  `json:"feedbackMessage"`
}

func commandSchema() *schema {
	return &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"action":        {Type: "STRING"},
			"merchant":      {Type: "STRING"},
			"amount":        {Type: "NUMBER"},
			"category":      {Type: "STRING"},
			"dreamName":     {Type: "STRING"},
			"dreamTarget":   {Type: "NUMBER"},
			"isSmartBuy":    {Type: "BOOLEAN"},
			"isWasteful":    {Type: "BOOLEAN"},
			"savingsAmount": {Type: "NUMBER"},
			"splitDetails": {
				Type: "OBJECT",
				Properties: map[string]*schema{
					"total":       {Type: "NUMBER"},
					"perPerson":   {Type: "NUMBER"},
					"peopleCount": {Type: "NUMBER"},
				},
			},
			"feedbackMessage": {Type: "STRING"},
		},
		Required: []string{"feedbackMessage"},
	}
}

func receiptSchema() *schema {
	return &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"merchant":        {Type: "STRING"},
			"amount":          {Type: "NUMBER"},
			"category":        {Type: "STRING"},
			"isSmartBuy":      {Type: "BOOLEAN"},
			"isWasteful":      {Type: "BOOLEAN"},
			"savingsAmount":   {Type: "NUMBER"},
			"feedbackMessage": {Type: "STRING"},
		},
		Required: []string{"merchant", "amount", "category", "feedbackMessage"},
	}
}
