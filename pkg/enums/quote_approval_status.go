package enums

import "fmt"

// QuoteApprovalStatus tracks the customer's answer to a repair quote.
type QuoteApprovalStatus string

const (
	QuoteApprovalStatusPending  QuoteApprovalStatus = "pending"
	QuoteApprovalStatusApproved QuoteApprovalStatus = "approved"
	QuoteApprovalStatusRejected QuoteApprovalStatus = "rejected"
)

var validQuoteApprovalStatuses = []QuoteApprovalStatus{
	QuoteApprovalStatusPending,
	QuoteApprovalStatusApproved,
	QuoteApprovalStatusRejected,
}

func (q QuoteApprovalStatus) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QuoteApprovalStatus.
func (q QuoteApprovalStatus) IsValid() bool {
	for _, candidate := range validQuoteApprovalStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQuoteApprovalStatus converts raw input into a QuoteApprovalStatus.
func ParseQuoteApprovalStatus(value string) (QuoteApprovalStatus, error) {
	for _, candidate := range validQuoteApprovalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote approval status %q", value)
}
