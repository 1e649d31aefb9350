// Package contact defines the contact/resume record and its enumerations.
package contact

import (
	"slices"
	"strings"
	"time"
)

// Gender is the self-described gender of a contact.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Genders lists the selectable genders in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// Language is a language the contact knows.
type Language string

const (
	LanguageTamil    Language = "tamil"
	LanguageEnglish  Language = "english"
	LanguageJapanese Language = "japanese"
)

// Languages lists the selectable languages in display order.
var Languages = []Language{LanguageTamil, LanguageEnglish, LanguageJapanese}

// Status is the contact's current occupation.
type Status string

const (
	StatusSchool  Status = "school"
	StatusCollege Status = "college"
	StatusWorking Status = "working"
)

// Statuses lists the selectable statuses in display order.
var Statuses = []Status{StatusCollege, StatusSchool, StatusWorking}

// Course is the course of study.
type Course string

const (
	CourseEngineering Course = "engineering"
	CourseArts        Course = "arts"
	CoursePoly        Course = "poly"
)

// Courses lists the selectable courses in display order.
var Courses = []Course{CourseEngineering, CourseArts, CoursePoly}

// Record is one contact/resume entry. ID is empty until the record is stored.
type Record struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	MobileNumber string     `json:"mobileNumber"`
	Gender       Gender     `json:"gender"`
	Languages    []Language `json:"lang"`
	DateOfBirth  time.Time  `json:"date"`
	Address      string     `json:"address"`
	Status       Status     `json:"status"`
	Course       Course     `json:"courses"`
	Skills       string     `json:"skills,omitempty"`
	Experiences  string     `json:"experiences,omitempty"`
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	r.Languages = slices.Clone(r.Languages)
	return r
}

// FullName joins first and last name.
func (r Record) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// HasLanguage reports whether lang is in the record's language set.
func (r Record) HasLanguage(lang Language) bool {
	return slices.Contains(r.Languages, lang)
}

// ToggleLanguage adds lang when absent and removes it when present.
func (r *Record) ToggleLanguage(lang Language) {
	if i := slices.Index(r.Languages, lang); i >= 0 {
		r.Languages = slices.Delete(slices.Clone(r.Languages), i, i+1)
		return
	}
	r.Languages = append(slices.Clone(r.Languages), lang)
}

// Label returns the display label for g.
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	case GenderOther:
		return "Other"
	}
	return string(g)
}

// Valid reports whether g is one of Genders.
func (g Gender) Valid() bool { return slices.Contains(Genders, g) }

// Label returns the display label for l.
func (l Language) Label() string {
	switch l {
	case LanguageTamil:
		return "Tamil"
	case LanguageEnglish:
		return "English"
	case LanguageJapanese:
		return "Japanese"
	}
	return string(l)
}

// Valid reports whether l is one of Languages.
func (l Language) Valid() bool { return slices.Contains(Languages, l) }

// Label returns the display label for s.
func (s Status) Label() string {
	switch s {
	case StatusSchool:
		return "School"
	case StatusCollege:
		return "College"
	case StatusWorking:
		return "Working Professional"
	}
	return string(s)
}

// Valid reports whether s is one of Statuses.
func (s Status) Valid() bool { return slices.Contains(Statuses, s) }

// Label returns the display label for c.
func (c Course) Label() string {
	switch c {
	case CourseEngineering:
		return "Engineering"
	case CourseArts:
		return "Arts and Science"
	case CoursePoly:
		return "Polytechnic"
	}
	return string(c)
}

// Valid reports whether c is one of Courses.
func (c Course) Valid() bool { return slices.Contains(Courses, c) }

// NormalizeGender maps legacy stored values onto the canonical set.
func NormalizeGender(v string) Gender {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "others" {
		return GenderOther
	}
	return Gender(v)
}

// NormalizeStatus maps legacy stored values onto the canonical set.
func NormalizeStatus(v string) Status {
	switch strings.TrimSpace(v) {
	case "workingProfessional", "working_professional", "workingprofessional":
		return StatusWorking
	}
	return Status(strings.ToLower(strings.TrimSpace(v)))
}

// NormalizeLanguage lower-cases and trims a language value.
func NormalizeLanguage(v string) Language {
	return Language(strings.ToLower(strings.TrimSpace(v)))
}

// NormalizeCourse lower-cases and trims a course value.
func NormalizeCourse(v string) Course {
	return Course(strings.ToLower(strings.TrimSpace(v)))
}

// Next returns the value after cur in values, wrapping around.
// An unknown cur yields the first value.
func Next[T comparable](values []T, cur T) T {
	i := slices.Index(values, cur)
	return values[(i+1)%len(values)]
}

// Prev returns the value before cur in values, wrapping around.
// An unknown cur yields the last value.
func Prev[T comparable](values []T, cur T) T {
	i := slices.Index(values, cur)
	if i <= 0 {
		return values[len(values)-1]
	}
	return values[i-1]
}
