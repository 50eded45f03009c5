package model

// Question is a single clarifying question generated for a user query.
// Validation tags are enforced by the questions generator after decoding the
// model reply.
type Question struct {
	ID      string   `json:"id" validate:"required"`
	Text    string   `json:"text" validate:"required"`
	Answers []string `json:"answers" validate:"required,min=1,dive,required"`
}

// QuestionsResponse is the JSON object the question-generation model is
// instructed to return.
type QuestionsResponse struct {
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
}

// TextByID returns a question-id to question-text lookup used when rendering
// preference answers into a prompt.
func TextByID(questions []Question) map[string]string {
	m := make(map[string]string, len(questions))
	for _, q := range questions {
		m[q.ID] = q.Text
	}
	return m
}
