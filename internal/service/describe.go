package service

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"construction-sales-ledger/internal/domain"
)

var printer = message.NewPrinter(language.English)

// describe renders the default description of a ledger transaction, e.g.
// "Earning of 12,500 for task 7f3c...".
func describe(kind domain.TransactionKind, amount int64, ref string) string {
	if amount < 0 {
		amount = -amount
	}
	switch kind {
	case domain.TransactionKindEarning:
		return printer.Sprintf("Earning of %d for task %s", amount, ref)
	case domain.TransactionKindPromotion:
		if ref == "" {
			return printer.Sprintf("Released %d to available balance", amount)
		}
		return printer.Sprintf("Released %d from task %s to available balance", amount, ref)
	case domain.TransactionKindPayoutRequest:
		return printer.Sprintf("Payout %s requested for %d", ref, amount)
	case domain.TransactionKindPayoutPaid:
		return printer.Sprintf("Payout %s of %d paid", ref, amount)
	case domain.TransactionKindPayoutRejected:
		return printer.Sprintf("Payout %s rejected, %d returned to available balance", ref, amount)
	}
	return printer.Sprintf("%s of %d", kind, amount)
}
