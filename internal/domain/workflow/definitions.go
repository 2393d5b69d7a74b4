package workflow

// State names shared by several workflows.
const (
	StatePlace         StateName = "place"
	StateEmployeePhoto StateName = "employee_photo"
	StatePlacePhoto    StateName = "place_photo"
	StateReceiptsPhoto StateName = "receipts_photo"

	StateSkatesDried            StateName = "skates_dried"
	StateSkateDefects           StateName = "skate_defects"
	StateSkateDefectsPhoto      StateName = "skate_defects_photo"
	StateLaces                  StateName = "laces"
	StateHatsAndSocks           StateName = "hats_and_socks"
	StatePenguinDefects         StateName = "penguin_defects"
	StatePenguinDefectsPhoto    StateName = "penguin_defects_photo"
	StateBoxDefects             StateName = "box_defects"
	StateBoxDefectsPhoto        StateName = "box_defects_photo"
	StateProtection             StateName = "protection"
	StateMusic                  StateName = "music"
	StateZoneClean              StateName = "zone_clean"
	StateIceCondition           StateName = "ice_condition"
	StatePaymentsMatch          StateName = "payments_match"
	StateComplaints             StateName = "complaints"
	StateComplaintsText         StateName = "complaints_text"
	StateUrgentIssues           StateName = "urgent_issues"
	StateTicketsSold            StateName = "tickets_sold"
	StateTicketRevenue          StateName = "ticket_revenue"
	StateVisitors               StateName = "visitors"
	StateCash                   StateName = "cash"
	StateCard                   StateName = "card"
	StateQR                     StateName = "qr"
	StateRevenue                StateName = "revenue"
	StateBenefits               StateName = "benefits"
	StateBenefitsPhoto          StateName = "benefits_photo"
	StateDisinfection           StateName = "disinfection"
	StateSkatesOnDryer          StateName = "skates_on_dryer"
	StateProtectionDefects      StateName = "protection_defects"
	StateProtectionDefectsPhoto StateName = "protection_defects_photo"
	StateMusicOff               StateName = "music_off"
	StateReceiptsCount          StateName = "receipts_count"
	StateSalaries               StateName = "salaries"
	StateSalariesCheck          StateName = "salaries_check"
	StatePavilionClosed         StateName = "pavilion_closed"
	StateHasDeposit             StateName = "has_deposit"
	StateReceiptPhoto           StateName = "receipt_photo"
	StateDepositDate            StateName = "deposit_date"
)

var yesNo = []string{ChoiceYes, ChoiceNo}

func place(next StateName) *State {
	return &State{Name: StatePlace, Expect: ExpectLocation, Next: next}
}

func photo(name, next StateName) *State {
	return &State{Name: name, Expect: ExpectPhoto, Next: next}
}

func text(name, next StateName) *State {
	return &State{Name: name, Expect: ExpectText, Next: next}
}

func digits(name, next StateName) *State {
	return &State{Name: name, Expect: ExpectDigits, Next: next}
}

// question is a yes/no state that continues to next whatever the answer.
func question(name, next StateName) *State {
	return &State{Name: name, Expect: ExpectChoice, Choices: yesNo, Next: next}
}

// flag is a yes/no state that detours through onYes before continuing to next.
func flag(name, onYes, next StateName) *State {
	return &State{
		Name:     name,
		Expect:   ExpectChoice,
		Choices:  yesNo,
		Next:     next,
		Branches: map[string]StateName{ChoiceYes: onYes},
	}
}

// ShiftOpen is the opening checklist of a rental point.
func ShiftOpen() *Definition {
	return newDefinition(TypeShiftOpen,
		place(StateEmployeePhoto),
		photo(StateEmployeePhoto, StatePlacePhoto),
		photo(StatePlacePhoto, StateSkatesDried),
		question(StateSkatesDried, StateSkateDefects),
		flag(StateSkateDefects, StateSkateDefectsPhoto, StateLaces),
		photo(StateSkateDefectsPhoto, StateLaces),
		question(StateLaces, StateHatsAndSocks),
		question(StateHatsAndSocks, StatePenguinDefects),
		flag(StatePenguinDefects, StatePenguinDefectsPhoto, StateBoxDefects),
		photo(StatePenguinDefectsPhoto, StateBoxDefects),
		flag(StateBoxDefects, StateBoxDefectsPhoto, StateProtection),
		photo(StateBoxDefectsPhoto, StateProtection),
		question(StateProtection, StateMusic),
		question(StateMusic, StateZoneClean),
		question(StateZoneClean, StateIceCondition),
		&State{Name: StateIceCondition, Expect: ExpectChoice, Choices: []string{ChoiceGood, ChoiceBad}, Next: StateSubmitted},
	)
}

// DailyCheck is the midday reconciliation.
func DailyCheck() *Definition {
	return newDefinition(TypeDailyCheck,
		place(StatePaymentsMatch),
		question(StatePaymentsMatch, StatePlacePhoto),
		photo(StatePlacePhoto, StateSkateDefects),
		flag(StateSkateDefects, StateSkateDefectsPhoto, StateComplaints),
		photo(StateSkateDefectsPhoto, StateComplaints),
		flag(StateComplaints, StateComplaintsText, StateUrgentIssues),
		text(StateComplaintsText, StateUrgentIssues),
		question(StateUrgentIssues, StateTicketsSold),
		digits(StateTicketsSold, StateTicketRevenue),
		digits(StateTicketRevenue, StateSubmitted),
	)
}

// ShiftClose is the closing checklist with the day's takings.
// Cash, card and QR amounts are free text and are reported verbatim.
func ShiftClose() *Definition {
	return newDefinition(TypeShiftClose,
		place(StateVisitors),
		digits(StateVisitors, StateCash),
		text(StateCash, StateCard),
		text(StateCard, StateQR),
		text(StateQR, StateRevenue),
		digits(StateRevenue, StateReceiptsPhoto),
		photo(StateReceiptsPhoto, StateBenefits),
		flag(StateBenefits, StateBenefitsPhoto, StateDisinfection),
		&State{Name: StateBenefitsPhoto, Expect: ExpectPhotoOrSentinel, Next: StateDisinfection},
		question(StateDisinfection, StateSkatesOnDryer),
		question(StateSkatesOnDryer, StateSkateDefects),
		flag(StateSkateDefects, StateSkateDefectsPhoto, StateHatsAndSocks),
		photo(StateSkateDefectsPhoto, StateHatsAndSocks),
		question(StateHatsAndSocks, StateProtectionDefects),
		flag(StateProtectionDefects, StateProtectionDefectsPhoto, StateMusicOff),
		photo(StateProtectionDefectsPhoto, StateMusicOff),
		question(StateMusicOff, StateReceiptsCount),
		text(StateReceiptsCount, StateSalaries),
		text(StateSalaries, StateSalariesCheck),
		&State{
			Name:     StateSalariesCheck,
			Expect:   ExpectChoice,
			Choices:  []string{ChoiceSend, ChoiceRewrite},
			Next:     StateZoneClean,
			Branches: map[string]StateName{ChoiceRewrite: StateSalaries},
		},
		question(StateZoneClean, StatePavilionClosed),
		question(StatePavilionClosed, StateSubmitted),
	)
}

// CashDeposit reports the previous day's cash collection.
func CashDeposit() *Definition {
	return newDefinition(TypeCashDeposit,
		place(StateHasDeposit),
		&State{
			Name:     StateHasDeposit,
			Expect:   ExpectChoice,
			Choices:  yesNo,
			Next:     StateReceiptPhoto,
			Branches: map[string]StateName{ChoiceNo: StateSubmitted},
		},
		photo(StateReceiptPhoto, StateCash),
		digits(StateCash, StateDepositDate),
		text(StateDepositDate, StateSubmitted),
	)
}

// Definitions returns the table of every shift workflow.
func Definitions() []*Definition {
	return []*Definition{ShiftOpen(), DailyCheck(), ShiftClose(), CashDeposit()}
}
