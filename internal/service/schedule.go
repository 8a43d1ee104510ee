package service

import (
	"fmt"
	"time"

	"construction-sales-ledger/internal/domain"
)

// MonthlySchedule splits remaining into count installments. Every installment
// but the last gets floor(remaining/count); the last absorbs the remainder.
func MonthlySchedule(remaining int64, count int, firstDue time.Time, interval time.Duration) ([]domain.Installment, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: installment count must be at least 1", domain.ErrInvalidArgument)
	}
	if remaining < int64(count) {
		return nil, fmt.Errorf("%w: %d cannot be split into %d installments", domain.ErrInvalidAmount, remaining, count)
	}
	if firstDue.IsZero() {
		return nil, fmt.Errorf("%w: first due date is required", domain.ErrInvalidArgument)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: installment interval must be positive", domain.ErrInvalidArgument)
	}

	base := remaining / int64(count)
	out := make([]domain.Installment, count)
	for k := 0; k < count; k++ {
		out[k] = domain.Installment{
			Sequence: k + 1,
			Amount:   base,
			DueDate:  firstDue.UTC().Add(time.Duration(k) * interval),
		}
	}
	out[count-1].Amount = remaining - base*int64(count-1)
	return out, nil
}

// ConstructionSchedule assigns each milestone round(remaining*pct/100),
// rounding half up and capped at what is still unallocated, with the last
// milestone absorbing the drift. Due dates
// stay on the placeholder until the linked milestone completes.
func ConstructionSchedule(remaining int64, milestones []domain.Milestone) ([]domain.Installment, error) {
	if len(milestones) == 0 {
		return nil, fmt.Errorf("%w: no milestones", domain.ErrInvalidMilestoneSplit)
	}

	total := 0
	for _, m := range milestones {
		if m.Percentage < 1 || m.Percentage > 100 {
			return nil, fmt.Errorf("%w: percentage %d out of range", domain.ErrInvalidMilestoneSplit, m.Percentage)
		}
		total += m.Percentage
	}
	if total != 100 {
		return nil, fmt.Errorf("%w: percentages sum to %d", domain.ErrInvalidMilestoneSplit, total)
	}
	if remaining <= 0 {
		return nil, fmt.Errorf("%w: nothing left to schedule", domain.ErrInvalidAmount)
	}

	out := make([]domain.Installment, len(milestones))
	var allocated int64
	for i, m := range milestones {
		amount := min((remaining*int64(m.Percentage)+50)/100, remaining-allocated)
		if i == len(milestones)-1 {
			amount = remaining - allocated
		}
		allocated += amount
		out[i] = domain.Installment{
			Sequence:            i + 1,
			Amount:              amount,
			DueDate:             domain.MilestoneDuePlaceholder,
			MilestoneTaskID:     m.TaskID,
			MilestonePercentage: m.Percentage,
		}
	}
	return out, nil
}

// CashSchedule is a single installment of everything past the down payment.
// A fully prepaid deal has no installments.
func CashSchedule(remaining int64, due time.Time) ([]domain.Installment, error) {
	if remaining == 0 {
		return nil, nil
	}
	if remaining < 0 {
		return nil, fmt.Errorf("%w: down payment exceeds the final price", domain.ErrInvalidAmount)
	}
	if due.IsZero() {
		return nil, fmt.Errorf("%w: due date is required", domain.ErrInvalidArgument)
	}
	return []domain.Installment{{Sequence: 1, Amount: remaining, DueDate: due.UTC()}}, nil
}
