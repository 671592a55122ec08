package gemini

// Wire types for the generateContent REST method. Only the fields this
// service reads or writes are modelled.

type Part struct {
	Text string `json:"text,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type GenerateContentRequest struct {
	Contents []Content `json:"contents"`
}

type Candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
	Index        int      `json:"index"`
}

type PromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	ModelVersion   string          `json:"modelVersion,omitempty"`
}

// FirstText returns the first candidate's first part text, or a ParseError
// describing why the response carries no answer.
func (r *GenerateContentResponse) FirstText() (string, error) {
	if len(r.Candidates) == 0 {
		if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
			return "", &ParseError{Reason: "prompt blocked: " + r.PromptFeedback.BlockReason}
		}
		return "", &ParseError{Reason: "no candidates"}
	}
	c := r.Candidates[0]
	if c.Content == nil || len(c.Content.Parts) == 0 {
		reason := "first candidate has no content"
		if c.FinishReason != "" {
			reason += " (finish reason " + c.FinishReason + ")"
		}
		return "", &ParseError{Reason: reason}
	}
	if c.Content.Parts[0].Text == "" {
		return "", &ParseError{Reason: "first part has no text"}
	}
	return c.Content.Parts[0].Text, nil
}
