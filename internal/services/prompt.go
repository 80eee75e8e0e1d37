package services

import "strings"

const systemPreamble = `You are a helpful assistant for RiskAtlas, a risk intelligence platform for the insurance industry.

Use the following knowledge base to answer questions accurately and conversationally. Be friendly, professional, and concise. If you don't know something, say so.`

const systemGuidelines = `Guidelines:
- Answer questions directly and clearly
- Use specific details from the knowledge base when relevant
- Keep responses conversational but professional
- If asked about features not in the knowledge base, acknowledge the limitation
- For technical questions, you can provide detail, but keep it accessible
- Encourage users to reach out for demos or more information when appropriate`

// BuildSystemPrompt joins the fixed preamble, the knowledge base and the
// answering guidelines. It is computed once at startup.
func BuildSystemPrompt(knowledgeBase string) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\n")
	b.WriteString(knowledgeBase)
	b.WriteString("\n\n")
	b.WriteString(systemGuidelines)
	return b.String()
}
