package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// Status is an applicant's stage in the hiring pipeline.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusPriority  Status = "PRIORITY"
	StatusQualified Status = "QUALIFIED"
	StatusReviewed  Status = "REVIEWED"
	StatusContacted Status = "CONTACTED"
	StatusInterview Status = "INTERVIEW"
	StatusHired     Status = "HIRED"
	StatusRejected  Status = "REJECTED"
)

var ErrInvalidStatus = errors.New("invalid status")

// Statuses lists every status in pipeline order.
var Statuses = []Status{
	StatusNew,
	StatusPriority,
	StatusQualified,
	StatusReviewed,
	StatusContacted,
	StatusInterview,
	StatusHired,
	StatusRejected,
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// Terminal reports whether no further pipeline stage follows.
func (s Status) Terminal() bool {
	return s == StatusHired || s == StatusRejected
}

func (s Status) String() string { return string(s) }

func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
	}
	return string(s), nil
}

func (s *Status) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*s = StatusNew
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", src)
	}
	if strings.TrimSpace(raw) == "" {
		*s = StatusNew
		return nil
	}
	st, err := ParseStatus(raw)
	if err != nil {
		// kept verbatim; the repository reports and remaps it
		*s = Status(raw)
		return nil
	}
	*s = st
	return nil
}

func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
