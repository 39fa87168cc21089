package snapshot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dvloznov/finance-advisor/internal/domain"
)

const (
	// DefaultCurrency prefixes every amount in rendered prompts.
	DefaultCurrency = "₹"
	// HistoryTurns is how many trailing chat turns are kept in the chat prompt.
	HistoryTurns = 4
	// PromptRecentCount is how many recent transactions the suggestion prompt lists.
	PromptRecentCount = 5

	noCategoryData     = "- No category data available"
	noRecentTx         = "- No recent transactions"
	noExpenseData      = "- No expense data yet"
	conversationStarts = "This is the start of the conversation"
	uncategorized      = "Uncategorized"
	promptDateLayout   = "2006-01-02"
)

// Renderer turns snapshots into prompt text. The zero value renders amounts
// with DefaultCurrency.
type Renderer struct {
	Currency string
}

// NewRenderer returns a Renderer using currency, or DefaultCurrency when blank.
func NewRenderer(currency string) Renderer {
	return Renderer{Currency: currency}
}

func (r Renderer) money(v float64) string {
	return r.currency() + strconv.FormatFloat(v, 'f', -1, 64)
}

// SuggestionPrompt renders the advisor instruction for a single short tip.
func (r Renderer) SuggestionPrompt(s domain.FinancialSnapshot) string {
	var b strings.Builder

	b.WriteString("You are a friendly and helpful personal finance advisor. ")
	b.WriteString("Analyze the following financial data and provide a personalized, actionable suggestion to help improve financial health.\n\n")

	b.WriteString("Financial Snapshot:\n")
	fmt.Fprintf(&b, "- Monthly Income: %s\n", r.money(s.TotalIncome))
	fmt.Fprintf(&b, "- Monthly Expenses: %s\n", r.money(s.TotalExpenses))
	fmt.Fprintf(&b, "- Monthly Savings: %s (%d%% of income)\n", r.money(s.Savings), s.SavingsRate)
	fmt.Fprintf(&b, "- Daily Average Spending: %s%.2f\n\n", r.currency(), s.DailyAverageSpending)

	b.WriteString("Top Spending Categories:\n")
	if len(s.TopCategories) == 0 {
		b.WriteString(noCategoryData + "\n")
	}
	for i, c := range s.TopCategories {
		fmt.Fprintf(&b, "%d. %s: %s (%d%% of expenses)\n", i+1, labelOrDefault(c.Category), r.money(c.Total), c.Percentage)
	}
	b.WriteString("\n")

	b.WriteString("Recent Transactions:\n")
	recent := s.RecentTransactions
	if len(recent) > PromptRecentCount {
		recent = recent[:PromptRecentCount]
	}
	if len(recent) == 0 {
		b.WriteString(noRecentTx + "\n")
	}
	for _, tx := range recent {
		fmt.Fprintf(&b, "- %s %s: %s (%s)\n", kindMarker(tx.Kind), labelOrDefault(tx.Label), r.money(tx.Amount), tx.Date.Format(promptDateLayout))
	}
	b.WriteString("\n")

	b.WriteString("Please provide a personalized financial suggestion that:\n")
	b.WriteString("1. Acknowledges their current financial position\n")
	b.WriteString("2. Highlights one key area for improvement\n")
	b.WriteString("3. Provides a specific, actionable tip\n")
	b.WriteString("4. Is encouraging and positive\n")
	b.WriteString("5. Is 2-3 sentences maximum\n\n")
	b.WriteString("Focus on their top spending categories and suggest practical ways to optimize those expenses while maintaining quality of life.")

	return b.String()
}

// ChatPrompt renders the assistant instruction for answering userMessage with
// the snapshot as context. Entries with a blank role or content are skipped,
// then only the last HistoryTurns entries of history are used.
func (r Renderer) ChatPrompt(userMessage string, s domain.FinancialSnapshot, history []domain.ChatMessage) string {
	var b strings.Builder

	b.WriteString("You are a friendly personal finance assistant helping users manage their money. ")
	b.WriteString("Be conversational, helpful, and encouraging.\n\n")

	b.WriteString("User's Financial Context:\n")
	fmt.Fprintf(&b, "- Monthly Income: %s\n", r.money(s.TotalIncome))
	fmt.Fprintf(&b, "- Monthly Expenses: %s\n", r.money(s.TotalExpenses))
	fmt.Fprintf(&b, "- Current Savings: %s\n\n", r.money(s.NetBalance))

	b.WriteString("Expense Categories:\n")
	if len(s.Categories) == 0 {
		b.WriteString(noExpenseData + "\n")
	}
	for _, c := range s.Categories {
		fmt.Fprintf(&b, "- %s: %s\n", labelOrDefault(c.Category), r.money(c.Total))
	}
	b.WriteString("\n")

	b.WriteString("Previous conversation:\n")
	history = completeTurns(history)
	if len(history) > HistoryTurns {
		history = history[len(history)-HistoryTurns:]
	}
	if len(history) == 0 {
		b.WriteString(conversationStarts + "\n")
	}
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", strings.TrimSpace(m.Role), strings.TrimSpace(m.Content))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "User's question: %s\n\n", userMessage)
	b.WriteString("Provide a helpful, friendly response. Keep it concise (3-4 sentences max) and actionable. ")
	b.WriteString("If the user asks about their finances, use the data provided above.")

	return b.String()
}

func (r Renderer) currency() string {
	if r.Currency == "" {
		return DefaultCurrency
	}
	return r.Currency
}

func labelOrDefault(label string) string {
	if strings.TrimSpace(label) == "" {
		return uncategorized
	}
	return label
}

// completeTurns drops history entries missing a role or content.
func completeTurns(history []domain.ChatMessage) []domain.ChatMessage {
	out := make([]domain.ChatMessage, 0, len(history))
	for _, m := range history {
		if strings.TrimSpace(m.Role) == "" || strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

func kindMarker(k domain.Kind) string {
	if k == domain.KindExpense {
		return "🛒"
	}
	return "💰"
}
