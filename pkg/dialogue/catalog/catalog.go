package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TaskType identifies a banking goal the assistant can complete.
type TaskType string

const (
	TaskBalanceInquiry    TaskType = "balance_inquiry"
	TaskTransfer          TaskType = "transfer"
	TaskCardBlock         TaskType = "card_block"
	TaskLoanApply         TaskType = "loan_apply"
	TaskComplaintFile     TaskType = "complaint_file"
	TaskInformationLookup TaskType = "information_lookup"
	TaskGeneralInquiry    TaskType = "general_inquiry"
)

// Step is one slot-filling turn: the field to collect and how to ask for it.
type Step struct {
	Field  string
	Prompt string
}

// Definition describes everything the orchestrator needs to drive one task.
type Definition struct {
	Task           TaskType
	Description    string
	RequiredFields []string
	Steps          []Step
}

// RuleKind selects the validation predicate for a field.
type RuleKind int

const (
	RuleAmount RuleKind = iota // numeric value within [Min, Max]
	RuleEnum                   // case-insensitive membership in Allowed
	RuleDigits                 // numeric string, MinLen..MaxLen digits
	RuleText                   // non-empty free text
)

// Rule is a declarative field validator with a fixed user-facing message.
type Rule struct {
	Kind    RuleKind
	Min     float64
	Max     float64
	MinLen  int
	MaxLen  int
	Allowed []string
	Message string
}

// Validate checks a candidate value. It never mutates state; the returned
// error text is safe to show to the user as-is.
func (r Rule) Validate(value string) error {
	value = strings.TrimSpace(value)
	switch r.Kind {
	case RuleAmount:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil || n < r.Min || n > r.Max {
			return errors.New(r.Message)
		}
	case RuleEnum:
		lower := strings.ToLower(value)
		for _, a := range r.Allowed {
			if lower == a {
				return nil
			}
		}
		return errors.New(r.Message)
	case RuleDigits:
		if len(value) < r.MinLen || len(value) > r.MaxLen {
			return errors.New(r.Message)
		}
		for _, c := range value {
			if c < '0' || c > '9' {
				return errors.New(r.Message)
			}
		}
	case RuleText:
		if value == "" {
			return errors.New(r.Message)
		}
	}
	return nil
}

const (
	LoanMinAmount = 1000
	LoanMaxAmount = 10000000
)

var LoanTypes = []string{"personal", "home", "car", "education", "business"}

var ComplaintCategories = []string{"account", "card", "transaction", "loan", "service", "other"}

var definitions = map[TaskType]Definition{
	TaskBalanceInquiry: {
		Task:        TaskBalanceInquiry,
		Description: "Check your account balance",
	},
	TaskTransfer: {
		Task:           TaskTransfer,
		Description:    "Transfer money to another account",
		RequiredFields: []string{"to_account", "amount"},
		Steps: []Step{
			{Field: "to_account", Prompt: "Which account number should I send the money to?"},
			{Field: "amount", Prompt: "How much would you like to transfer?"},
		},
	},
	TaskCardBlock: {
		Task:           TaskCardBlock,
		Description:    "Block a debit or credit card",
		RequiredFields: []string{"card_number"},
		Steps: []Step{
			{Field: "card_number", Prompt: "Please share the last 4 digits of the card you want to block."},
		},
	},
	TaskLoanApply: {
		Task:           TaskLoanApply,
		Description:    "Apply for a loan",
		RequiredFields: []string{"loan_type", "amount", "tenure"},
		Steps: []Step{
			{Field: "loan_type", Prompt: "What type of loan do you need? We offer personal, home, car, education and business loans."},
			{Field: "amount", Prompt: "How much would you like to borrow?"},
			{Field: "tenure", Prompt: "Over how many months would you like to repay?"},
		},
	},
	TaskComplaintFile: {
		Task:           TaskComplaintFile,
		Description:    "File a complaint",
		RequiredFields: []string{"subject", "description", "category"},
		Steps: []Step{
			{Field: "subject", Prompt: "What is your complaint about, in a few words?"},
			{Field: "description", Prompt: "Please describe the issue in detail."},
			{Field: "category", Prompt: "Which category fits best: account, card, transaction, loan, service or other?"},
		},
	},
	TaskInformationLookup: {
		Task:        TaskInformationLookup,
		Description: "Look up banking information",
	},
	TaskGeneralInquiry: {
		Task:        TaskGeneralInquiry,
		Description: "General inquiry",
	},
}

var rules = map[TaskType]map[string]Rule{
	TaskTransfer: {
		"to_account": {Kind: RuleDigits, MinLen: 6, MaxLen: 16, Message: "That doesn't look like a valid account number. It should be 6 to 16 digits."},
		"amount":     {Kind: RuleAmount, Min: 1, Max: 1000000, Message: "Transfer amounts must be between 1 and 1,000,000."},
	},
	TaskCardBlock: {
		"card_number": {Kind: RuleDigits, MinLen: 4, MaxLen: 4, Message: "Please give exactly the last 4 digits of your card."},
	},
	TaskLoanApply: {
		"loan_type": {Kind: RuleEnum, Allowed: LoanTypes, Message: "We offer personal, home, car, education and business loans. Which one would you like?"},
		"amount":    {Kind: RuleAmount, Min: LoanMinAmount, Max: LoanMaxAmount, Message: "Loan amounts must be between 1,000 and 10,000,000."},
		"tenure":    {Kind: RuleAmount, Min: 6, Max: 360, Message: "Repayment tenure must be between 6 and 360 months."},
	},
	TaskComplaintFile: {
		"subject":     {Kind: RuleText, Message: "Please give a short subject for your complaint."},
		"description": {Kind: RuleText, Message: "Please describe the issue so we can route it correctly."},
		"category":    {Kind: RuleEnum, Allowed: ComplaintCategories, Message: "The category must be one of: account, card, transaction, loan, service, other."},
	},
}

// Lookup returns the definition for a task type. Unknown task types fall back
// to the general-inquiry definition so callers never see an undefined task.
func Lookup(task TaskType) Definition {
	if def, ok := definitions[task]; ok {
		return def
	}
	return definitions[TaskGeneralInquiry]
}

// IsKnown reports whether the task type is registered.
func IsKnown(task TaskType) bool {
	_, ok := definitions[task]
	return ok
}

// MissingFields returns required fields with no value in either map, in the
// catalog's declared order. That order decides which field is asked for next.
func MissingFields(task TaskType, collected, entities map[string]string) []string {
	def := Lookup(task)
	var missing []string
	for _, f := range def.RequiredFields {
		if collected[f] != "" || entities[f] != "" {
			continue
		}
		missing = append(missing, f)
	}
	return missing
}

// ValidateField applies the field's declarative rule. Fields without a rule
// accept any value.
func ValidateField(task TaskType, field, value string) error {
	if fieldRules, ok := rules[task]; ok {
		if rule, ok := fieldRules[field]; ok {
			return rule.Validate(value)
		}
	}
	return nil
}

// PromptFor returns the question that collects the given field.
func PromptFor(task TaskType, field string) string {
	for _, step := range Lookup(task).Steps {
		if step.Field == field {
			return step.Prompt
		}
	}
	return fmt.Sprintf("Could you tell me the %s?", strings.ReplaceAll(field, "_", " "))
}

// FieldRule exposes the rule for a field so the extractor can reuse the enum
// vocabularies. The second return is false when the field has no rule.
func FieldRule(task TaskType, field string) (Rule, bool) {
	if fieldRules, ok := rules[task]; ok {
		rule, ok := fieldRules[field]
		return rule, ok
	}
	return Rule{}, false
}

// Affirmations and Negations are the fixed confirmation vocabularies. They are
// matched offline so a confirmation turn never costs a collaborator call.
var Affirmations = []string{"yes", "yeah", "yep", "sure", "ok", "okay", "confirm", "proceed", "correct", "go ahead", "do it"}

var Negations = []string{"no", "nope", "cancel", "wrong", "don't", "stop", "change"}

// Greetings open a conversation; Closings end one.
var Greetings = []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening"}

var Closings = []string{"thanks", "thank you", "bye", "goodbye", "no thanks", "nothing", "that's all", "nothing else"}
