package sendtestnotification

// Input asks for one template to be rendered with sample values and sent to To. Values
// override individual sample tokens.
type Input struct {
	NotificationType string            `json:"notificationType"`
	Channel          string            `json:"channel"`
	To               string            `json:"to"`
	RequestedBy      string            `json:"requestedBy,omitempty"`
	Values           map[string]string `json:"values,omitempty"`
}

type Output struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body"`
}
