package assistant

import "fmt"

const dailyVersePrompt = `Share a single, inspiring and well-known Bible verse. Provide the verse text and its reference (e.g., John 3:16).

Output ONLY a valid JSON object matching this exact schema:
{
  "reference": "<the book, chapter, and verse reference, e.g. John 3:16>",
  "text": "<the full text of the Bible verse>"
}`

func explainPrompt(reference, text string) string {
	return fmt.Sprintf(`Please provide a clear and concise explanation for the Bible verse: "%s" (%s). Focus on its historical context, key theological meaning, and a brief application for modern life. Format the output with clear headings for 'Context', 'Meaning', and 'Application'. Use **double asterisks** for headings and emphasis; do not use any other markup.`, text, reference)
}

func answerPrompt(question string) string {
	return fmt.Sprintf(`Based on the teachings of the Bible, please answer the following question: "%s". Provide a thoughtful, balanced, and biblically-grounded response. If the Bible does not directly address the topic, explain the principles that could apply. Use **double asterisks** for emphasis; do not use any other markup.`, question)
}
