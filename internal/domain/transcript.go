package domain

// Transcript is the conversation as shown to a UI shell.
type Transcript struct {
	Messages []Message `json:"messages"`
	// Pending is true while a reply is being prepared.
	Pending bool `json:"pending"`
}

