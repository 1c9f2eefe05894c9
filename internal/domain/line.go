package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// MinEntryLines is the floor below which lines cannot be removed.
const MinEntryLines = 2

// LineField names an editable field of an EntryLine.
type LineField string

const (
	FieldAccountID   LineField = "account_id"
	FieldDebit       LineField = "debit_amount"
	FieldCredit      LineField = "credit_amount"
	FieldDescription LineField = "description"
)

// ParseLineField validates a field name received from a client.
func ParseLineField(s string) (LineField, error) {
	switch f := LineField(s); f {
	case FieldAccountID, FieldDebit, FieldCredit, FieldDescription:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
}

// IsAmount reports whether the field holds a currency amount.
func (f LineField) IsAmount() bool {
	return f == FieldDebit || f == FieldCredit
}

// EntryLine is one debit or credit row of a transaction.
// ID is local to the editing session.
type EntryLine struct {
	ID          int64  `json:"id"`
	AccountID   string `json:"account_id"`
	Debit       Amount `json:"debit_amount"`
	Credit      Amount `json:"credit_amount"`
	Description string `json:"description"`
}

// IsBlank reports whether the line has neither an account nor an amount.
func (l EntryLine) IsBlank() bool {
	return l.AccountID == "" && l.Debit.IsZero() && l.Credit.IsZero()
}

// EntryLineInput is a fully entered line received at the wire boundary.
type EntryLineInput struct {
	AccountID   string
	Debit       string
	Credit      string
	Description string
}

// EntryLineSet is the ordered, editable collection of lines of one document.
// Totals are recomputed before every mutating method returns.
type EntryLineSet struct {
	lines   []EntryLine
	nextID  int64
	balance Balance
}

// NewEntryLineSet returns a set holding two blank lines.
func NewEntryLineSet() *EntryLineSet {
	s := &EntryLineSet{nextID: 1}
	s.padToMinimum()
	s.recompute()
	return s
}

// NewEntryLineSetFrom builds a set from submitted lines.
// A line carrying both a positive debit and a positive credit is rejected.
func NewEntryLineSetFrom(inputs []EntryLineInput) (*EntryLineSet, error) {
	s := &EntryLineSet{nextID: 1}

	for i, in := range inputs {
		line := s.blankLine()
		line.AccountID = strings.TrimSpace(in.AccountID)
		line.Debit = NewAmount(in.Debit).NonNegative()
		line.Credit = NewAmount(in.Credit).NonNegative()
		line.Description = in.Description

		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return nil, fmt.Errorf("%w: line %d", ErrDebitAndCredit, i+1)
		}
		s.lines = append(s.lines, line)
	}

	s.padToMinimum()
	s.recompute()
	return s, nil
}

// AddLine appends a blank line with a fresh id.
func (s *EntryLineSet) AddLine() EntryLine {
	line := s.blankLine()
	s.lines = append(s.lines, line)
	s.recompute()
	return line
}

// RemoveLine deletes the line with the given id.
// It is a no-op when the id is unknown or the set is at its floor.
func (s *EntryLineSet) RemoveLine(id int64) bool {
	if len(s.lines) <= MinEntryLines {
		return false
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}

	s.lines = slices.Delete(s.lines, idx, idx+1)
	s.recompute()
	return true
}

// UpdateLine sets one field of one line.
// A positive debit zeroes the credit of the same line and vice versa.
// Negative amounts are clamped to zero. Unknown ids are a no-op.
func (s *EntryLineSet) UpdateLine(id int64, field LineField, value string) bool {
	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}

	line := &s.lines[idx]
	switch field {
	case FieldAccountID:
		line.AccountID = strings.TrimSpace(value)
	case FieldDescription:
		line.Description = value
	case FieldDebit:
		line.Debit = NewAmount(value).NonNegative()
		if line.Debit.IsPositive() {
			line.Credit = Amount{}
		}
	case FieldCredit:
		line.Credit = NewAmount(value).NonNegative()
		if line.Credit.IsPositive() {
			line.Debit = Amount{}
		}
	default:
		return false
	}

	s.recompute()
	return true
}

// CommitLine canonicalizes the text of an amount field to two places.
func (s *EntryLineSet) CommitLine(id int64, field LineField) bool {
	idx := s.indexOf(id)
	if idx < 0 || !field.IsAmount() {
		return false
	}

	line := &s.lines[idx]
	if field == FieldDebit {
		line.Debit = line.Debit.Commit()
	} else {
		line.Credit = line.Credit.Commit()
	}

	s.recompute()
	return true
}

// Lines returns a copy of the lines in display order.
func (s *EntryLineSet) Lines() []EntryLine {
	return slices.Clone(s.lines)
}

// Line returns the line with the given id.
func (s *EntryLineSet) Line(id int64) (EntryLine, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return EntryLine{}, false
	}
	return s.lines[idx], true
}

// Len returns the number of lines.
func (s *EntryLineSet) Len() int {
	return len(s.lines)
}

// Balance returns the totals as of the last mutation.
func (s *EntryLineSet) Balance() Balance {
	return s.balance
}

func (s *EntryLineSet) blankLine() EntryLine {
	line := EntryLine{ID: s.nextID}
	s.nextID++
	return line
}

func (s *EntryLineSet) padToMinimum() {
	for len(s.lines) < MinEntryLines {
		s.lines = append(s.lines, s.blankLine())
	}
}

func (s *EntryLineSet) indexOf(id int64) int {
	return slices.IndexFunc(s.lines, func(l EntryLine) bool { return l.ID == id })
}

func (s *EntryLineSet) recompute() {
	s.balance = Reconcile(s.lines)
}

type entryLineSetJSON struct {
	Lines  []EntryLine `json:"lines"`
	NextID int64       `json:"next_id"`
}

// MarshalJSON keeps the id counter so a restored set never reuses an id.
func (s *EntryLineSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryLineSetJSON{Lines: s.lines, NextID: s.nextID})
}

// UnmarshalJSON restores a set written by MarshalJSON.
func (s *EntryLineSet) UnmarshalJSON(data []byte) error {
	var raw entryLineSetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.lines = raw.Lines
	s.nextID = max(raw.NextID, 1)
	for _, line := range s.lines {
		if line.ID >= s.nextID {
			s.nextID = line.ID + 1
		}
	}

	s.padToMinimum()
	s.recompute()
	return nil
}
