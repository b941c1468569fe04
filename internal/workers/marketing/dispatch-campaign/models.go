package dispatchcampaign

// Input targets one customer when CustomerID is set, otherwise the campaign's segment, otherwise
// every customer.
type Input struct {
	CampaignID string `json:"campaignId"`
	CustomerID string `json:"customerId,omitempty"`
}

type RecipientResult struct {
	Success     bool   `json:"success"`
	Recipient   string `json:"recipient"`
	RecipientID string `json:"recipientId"`
	Error       string `json:"error,omitempty"`
}

// Output lists one result per recipient, in audience order. Skipped counts customers excluded
// because they opted out of the campaign channel.
type Output struct {
	Success bool              `json:"success"`
	Total   int               `json:"total"`
	Sent    int               `json:"sent"`
	Failed  int               `json:"failed"`
	Skipped int               `json:"skipped"`
	Results []RecipientResult `json:"results"`
}
