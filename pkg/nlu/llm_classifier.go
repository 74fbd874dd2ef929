package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/llm"
)

// LLMClassifier implements Classifier on top of a generic LLM provider.
// It is a pure classification call: the model never answers the user, it only
// labels the utterance and extracts key/value entities.
type LLMClassifier struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

var _ Classifier = (*LLMClassifier)(nil)

func NewLLMClassifier(provider llm.LLMProvider, log logger.ILogger) *LLMClassifier {
	return &LLMClassifier{provider: provider, logger: log}
}

func (c *LLMClassifier) Classify(ctx context.Context, utterance string, historyTail []string) (*Classification, error) {
	prompt := buildPrompt(utterance, historyTail)

	// Temperature 0 for deterministic labels
	response, err := c.provider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		c.logger.Warn("NLU", "Classification call failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("classify: %w", err)
	}

	result, err := parseClassification(response)
	if err != nil {
		c.logger.Warn("NLU", "Classification response unparseable", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	c.logger.Debug("NLU", "Classified utterance", map[string]interface{}{
		"intent":     result.Intent,
		"confidence": result.Confidence,
		"entities":   len(result.Entities),
	})
	return result, nil
}

func buildPrompt(utterance string, historyTail []string) string {
	var b strings.Builder

	b.WriteString("<system>\n")
	b.WriteString("You are an intent classifier for a banking assistant. Your ONLY job is to label what the user wants.\n")
	b.WriteString("You do NOT answer the user. You only classify.\n")
	b.WriteString("</system>\n\n")

	if len(historyTail) > 0 {
		b.WriteString("<recent_messages>\n")
		for _, m := range historyTail {
			b.WriteString(m)
			b.WriteString("\n")
		}
		b.WriteString("</recent_messages>\n\n")
	}

	b.WriteString("<user_message>\n")
	b.WriteString(utterance)
	b.WriteString("\n</user_message>\n\n")

	b.WriteString("<intents>\n")
	b.WriteString("balance_inquiry: user wants to know an account balance\n")
	b.WriteString("transfer: user wants to send money (entities: to_account, amount, description)\n")
	b.WriteString("card_block: user wants to block a card (entities: card_number - last 4 digits)\n")
	b.WriteString("loan_apply: user wants a loan (entities: loan_type, amount, tenure)\n")
	b.WriteString("complaint_file: user wants to report a problem (entities: subject, description, category)\n")
	b.WriteString("information_lookup: user asks a general banking question (entities: query)\n")
	b.WriteString("general_inquiry: anything else, or small talk\n")
	b.WriteString("</intents>\n\n")

	b.WriteString("<output_format>\n")
	b.WriteString("Respond with ONLY valid JSON:\n")
	b.WriteString("{\n")
	b.WriteString("  \"intent\": \"one of the intent labels\",\n")
	b.WriteString("  \"confidence\": 0.95,\n")
	b.WriteString("  \"entities\": {\"field\": \"value\"},\n")
	b.WriteString("  \"clarification_needed\": false,\n")
	b.WriteString("  \"clarification_question\": \"only when clarification_needed is true\"\n")
	b.WriteString("}\n")
	b.WriteString("Only include entities the user actually stated. Set clarification_needed when the message\n")
	b.WriteString("could mean two different intents and you cannot pick one.\n")
	b.WriteString("</output_format>")

	return b.String()
}

func parseClassification(response string) (*Classification, error) {
	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var result Classification
	if err := json.Unmarshal([]byte(jsonContent), &result); err != nil {
		return nil, fmt.Errorf("unmarshal classification: %w", err)
	}

	result.Intent = strings.ToLower(strings.TrimSpace(result.Intent))
	if result.Entities == nil {
		result.Entities = map[string]string{}
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	return &result, nil
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")
	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}
	return response[startIdx : endIdx+1]
}
