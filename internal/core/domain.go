package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinMoodScore     = 1
	MaxMoodScore     = 5
	MaxMoodTypeChars = 50
	MaxNotesChars    = 500

	// DateLayout is the wire format of calendar days.
	DateLayout = "2006-01-02"
)

const (
	OrderCreatedAsc  SortOrder = "created_asc"
	OrderCreatedDesc SortOrder = "created_desc"
)

type (
	SortOrder string

	// Date is a calendar day. The time part is always midnight UTC.
	Date struct {
		time.Time
	}

	MoodEntry struct {
		ID        int64     `json:"id"`
		MoodType  string    `json:"mood_type"`
		MoodScore int       `json:"mood_score"`
		Notes     *string   `json:"notes"`
		Date      Date      `json:"date"`
		CreatedAt time.Time `json:"created_at"`
	}

	// MoodInput carries the fields of a new entry. A nil Date means today.
	MoodInput struct {
		MoodType  string
		MoodScore int
		Notes     *string
		Date      *Date
	}

	// MoodUpdate is a partial update: nil fields are left untouched.
	MoodUpdate struct {
		MoodType  *string
		MoodScore *int
		Notes     *string
		Date      *Date
	}

	// EntryFilter selects entries from a store. From and To are inclusive;
	// a nil bound is unbounded. Limit 0 means no limit.
	EntryFilter struct {
		From     *Date
		To       *Date
		MoodType string
		Offset   int
		Limit    int
		Order    SortOrder
	}
)

var (
	ErrNotFound         = errors.New("mood entry not found")
	ErrInvalidMonth     = errors.New("invalid month: must be between 1 and 12")
	ErrStoreUnavailable = errors.New("entry store unavailable")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidScore     = fmt.Errorf("mood score must be between %d and %d", MinMoodScore, MaxMoodScore)
	ErrEmptyMoodType    = errors.New("empty mood type")
	ErrMoodTypeTooLong  = fmt.Errorf("mood type too long (max %d characters)", MaxMoodTypeChars)
	ErrNotesTooLong     = fmt.Errorf("notes too long (max %d characters)", MaxNotesChars)
)

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	for _, target := range []error{ErrInvalidDate, ErrInvalidScore, ErrEmptyMoodType, ErrMoodTypeTooLong, ErrNotesTooLong} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Today returns the current local calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// Validate rejects values carrying a clock time or a non-UTC location.
func (d Date) Validate() error {
	if d.Location() != time.UTC || !d.Time.Equal(d.Truncate(24*time.Hour)) {
		return fmt.Errorf("%w: %s is not a bare calendar day", ErrInvalidDate, d.Time)
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// String formats the day as YYYY-MM-DD. 0001-01-01 is a real day here.
func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Accept full timestamps too; only the day part is kept.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML renders the date the same way as JSON.
func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

func validateScore(score int) error {
	if score < MinMoodScore || score > MaxMoodScore {
		return ErrInvalidScore
	}
	return nil
}

func validateMoodType(moodType string) error {
	if strings.TrimSpace(moodType) == "" {
		return ErrEmptyMoodType
	}
	if utf8.RuneCountInString(moodType) > MaxMoodTypeChars {
		return ErrMoodTypeTooLong
	}
	return nil
}

func validateNotes(notes *string) error {
	if notes != nil && utf8.RuneCountInString(*notes) > MaxNotesChars {
		return ErrNotesTooLong
	}
	return nil
}

func (in MoodInput) Validate() error {
	if err := validateMoodType(in.MoodType); err != nil {
		return err
	}
	if in.Date != nil {
		if err := in.Date.Validate(); err != nil {
			return err
		}
	}
	if err := validateScore(in.MoodScore); err != nil {
		return err
	}
	return validateNotes(in.Notes)
}

func (u MoodUpdate) Validate() error {
	if u.MoodType != nil {
		if err := validateMoodType(*u.MoodType); err != nil {
			return err
		}
	}
	if u.MoodScore != nil {
		if err := validateScore(*u.MoodScore); err != nil {
			return err
		}
	}
	if u.Date != nil {
		if err := u.Date.Validate(); err != nil {
			return err
		}
	}
	return validateNotes(u.Notes)
}

// IsEmpty reports whether the update would change nothing.
func (u MoodUpdate) IsEmpty() bool {
	return u.MoodType == nil && u.MoodScore == nil && u.Notes == nil && u.Date == nil
}

// Apply copies every set field onto e.
func (u MoodUpdate) Apply(e *MoodEntry) {
	if u.MoodType != nil {
		e.MoodType = strings.TrimSpace(*u.MoodType)
	}
	if u.MoodScore != nil {
		e.MoodScore = *u.MoodScore
	}
	if u.Notes != nil {
		notes := *u.Notes
		e.Notes = &notes
	}
	if u.Date != nil {
		e.Date = *u.Date
	}
}

// Entry builds the entry a store persists for this input.
func (in MoodInput) Entry(now time.Time) MoodEntry {
	date := DateOf(now)
	if in.Date != nil {
		date = *in.Date
	}
	var notes *string
	if in.Notes != nil {
		n := *in.Notes
		notes = &n
	}
	return MoodEntry{
		MoodType:  strings.TrimSpace(in.MoodType),
		MoodScore: in.MoodScore,
		Notes:     notes,
		Date:      date,
		CreatedAt: now,
	}
}

// Between returns a filter for the inclusive range [from, to].
func Between(from, to Date) EntryFilter {
	return EntryFilter{From: &from, To: &to}
}

// Matches reports whether e passes the date and type parts of the filter.
func (f EntryFilter) Matches(e MoodEntry) bool {
	if f.From != nil && e.Date.Before(f.From.Time) {
		return false
	}
	if f.To != nil && e.Date.After(f.To.Time) {
		return false
	}
	if f.MoodType != "" && e.MoodType != f.MoodType {
		return false
	}
	return true
}
