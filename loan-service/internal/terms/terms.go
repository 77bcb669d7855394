// Package terms derives the computed fields of a loan: the weekday of the
// given date, the interest for the Interest section and the total owed.
package terms

import (
	"github.com/manikantaaddala217-hub/fin-backend/shared/apperr"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"github.com/manikantaaddala217-hub/fin-backend/shared/utils"
	"github.com/shopspring/decimal"
)

// MaxGivenAmount bounds the principal of a single loan.
const MaxGivenAmount int64 = 10_000_000

// PercentPlaces is the scale interestPercent is stored with (numeric(5,2)).
const PercentPlaces int32 = 2

var hundred = decimal.NewFromInt(100)

// Interest returns the interest of a loan. In the Interest section it is
// round(given * percent / 100), half away from zero, and supplied is ignored.
// Every other section keeps the supplied value.
func Interest(section string, given int64, percent decimal.Decimal, supplied int64) int64 {
	if section != models.SectionInterest {
		return supplied
	}
	return decimal.NewFromInt(given).Mul(percent).Div(hundred).Round(0).IntPart()
}

// Validate checks the ranges of the stored terms of l.
func Validate(l *models.LoanAccount) error {
	if !IsSection(l.Section) {
		return apperr.Validation("section must be one of Daily, Weekly, Monthly, Interest")
	}
	if l.SNo < 1 {
		return apperr.Validation("sno must be at least 1")
	}
	if l.GivenAmount < 0 || l.GivenAmount > MaxGivenAmount {
		return apperr.Validation("givenAmount must be between 0 and %d", MaxGivenAmount)
	}
	if l.InterestPercent.IsNegative() || l.InterestPercent.GreaterThan(hundred) {
		return apperr.Validation("interestPercent must be between 0 and 100")
	}
	if l.Interest < 0 {
		return apperr.Validation("interest must not be negative")
	}
	if l.LastDate != "" {
		if _, err := utils.ParseDate(l.LastDate); err != nil {
			return apperr.Validation("lastDate must be in YYYY-MM-DD format")
		}
	}
	return nil
}

// Apply validates l and re-derives Day, Interest and TAmount in place.
// InterestPercent is first rounded to its stored scale so the interest is
// computed from the value that is persisted. After Apply,
// l.TAmount == l.GivenAmount + l.Interest.
func Apply(l *models.LoanAccount) error {
	day, err := utils.Weekday(l.GivenDate)
	if err != nil {
		return apperr.Validation("givenDate must be in YYYY-MM-DD format")
	}
	l.InterestPercent = l.InterestPercent.Round(PercentPlaces)
	if err := Validate(l); err != nil {
		return err
	}
	l.Day = day
	l.Interest = Interest(l.Section, l.GivenAmount, l.InterestPercent, l.Interest)
	l.TAmount = l.GivenAmount + l.Interest
	return nil
}

func IsSection(s string) bool {
	for _, sec := range models.Sections {
		if s == sec {
			return true
		}
	}
	return false
}
