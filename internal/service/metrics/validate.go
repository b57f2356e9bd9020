package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mamadbah2/farmperf/internal/calendar"
	"github.com/mamadbah2/farmperf/internal/domain/models"
)

// ValidationError carries field-level messages for a rejected record.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// ValidateBiogas checks a reading before it may be persisted. It is shared by
// the preview form flow and every API entry point.
func ValidateBiogas(in models.RawBiogasInput) error {
	errs := fieldErrors{}

	if _, err := calendar.ParseDate(in.SaveDate); err != nil {
		errs.add("saveDate", "save date is required (YYYY-MM-DD)")
	}
	if strings.TrimSpace(in.Farm) == "" {
		errs.add("farm", "farm is required")
	}
	requirePositive(errs, "machineType", in.MachineType, "machine type")
	if in.MachineNo < 1 {
		errs.add("machineNo", "machine number must be at least 1")
	}
	requirePositive(errs, "hrAfter", in.HrAfter, "current running hours")
	requirePositive(errs, "kwAfter", in.KwAfter, "current power production")
	requirePositive(errs, "peaUnit", in.PeaUnit, "unit price")

	if in.HrBefore != nil {
		requireNonNegative(errs, "hrBefore", *in.HrBefore, "previous running hours")
	}
	if in.KwBefore != nil {
		requireNonNegative(errs, "kwBefore", *in.KwBefore, "previous power production")
	}
	requireNonNegative(errs, "hrStd", in.HrStd, "standard work hours")

	return errs.err()
}

// ValidateGrading checks a grading run before it may be persisted.
func ValidateGrading(in models.RawGradingInput) error {
	errs := fieldErrors{}

	if _, err := calendar.ParseDate(in.InputDate); err != nil {
		errs.add("inputDate", "input date is required (YYYY-MM-DD)")
	}
	if strings.TrimSpace(in.ShortArea) == "" {
		errs.add("shortArea", "site is required")
	}
	requirePositive(errs, "workTime", in.WorkTime, "work time")
	requirePositive(errs, "product", in.Product, "graded egg count")

	if in.Breakdown {
		if in.FixTime != nil {
			requireNonNegative(errs, "fixTime", *in.FixTime, "fix time")
		}
		if in.LostTime != nil {
			requireNonNegative(errs, "lostTime", *in.LostTime, "lost time")
		}
	}

	return errs.err()
}

func requirePositive(errs fieldErrors, field string, v float64, label string) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		errs.add(field, label+" must be a number")
	case v <= 0:
		errs.add(field, label+" must be greater than 0")
	}
}

func requireNonNegative(errs fieldErrors, field string, v float64, label string) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		errs.add(field, label+" must be a number")
	case v < 0:
		errs.add(field, label+" must not be negative")
	}
}
