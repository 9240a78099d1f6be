package enums

import "fmt"

// DocumentKind identifies which numbered document a sequence feeds.
type DocumentKind string

const (
	DocumentKindTicket  DocumentKind = "ticket"
	DocumentKindInvoice DocumentKind = "invoice"
	DocumentKindQuote   DocumentKind = "quote"
)

var validDocumentKinds = []DocumentKind{
	DocumentKindTicket,
	DocumentKindInvoice,
	DocumentKindQuote,
}

func (d DocumentKind) String() string {
	return string(d)
}

// Prefix returns the human-readable prefix printed on the document number.
func (d DocumentKind) Prefix() string {
	switch d {
	case DocumentKindTicket:
		return "SRV"
	case DocumentKindInvoice:
		return "FAT"
	case DocumentKindQuote:
		return "TKL"
	}
	return ""
}

// IsValid reports whether the value is a known DocumentKind.
func (d DocumentKind) IsValid() bool {
	for _, candidate := range validDocumentKinds {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDocumentKind converts raw input into a DocumentKind.
func ParseDocumentKind(value string) (DocumentKind, error) {
	for _, candidate := range validDocumentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document kind %q", value)
}
