package chat

import "fmt"

// The off-topic instruction is advisory; the remote model may ignore it.
const promptTemplate = "Answer the following medical-related question: %s\n\n" +
	"If the question is not related to medicine, respond with: 'I can only answer medical-related questions.'"

func Prompt(question string) string {
	return fmt.Sprintf(promptTemplate, question)
}
