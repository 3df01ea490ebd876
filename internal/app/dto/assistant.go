package dto

type AssistantTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AssistantAnswer struct {
	Answer string `json:"answer"`
}
